package models

// Notice is a user-visible, transient message about the outcome of an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}
