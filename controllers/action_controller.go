package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"vibin_discover/matching"
	"vibin_discover/middleware"
	"vibin_discover/services"

	"github.com/gorilla/mux"
)

// ActionController handles swipe, undo and reload requests on a session
type ActionController struct {
	ActionService *services.ActionService
	Photos        *services.PhotoService
	Now           func() time.Time
}

// NewActionController creates a new ActionController instance
func NewActionController(actionService *services.ActionService, photos *services.PhotoService) *ActionController {
	return &ActionController{ActionService: actionService, Photos: photos, Now: time.Now}
}

// actionResponse is an ActionResult with the session rendered for display
type actionResponse struct {
	Action  string                `json:"action"`
	Swipe   *matching.SwipeResult `json:"swipe,omitempty"`
	Undo    *matching.UndoResult  `json:"undo,omitempty"`
	Session services.SessionView  `json:"session"`
}

// HandleSwipe records a like or pass on the current candidate
func (ac *ActionController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Liked *bool `json:"liked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.Liked == nil {
		http.Error(w, "liked is required", http.StatusBadRequest)
		return
	}

	action := services.ActionNotLiked
	if *request.Liked {
		action = services.ActionLiked
	}
	ac.handle(w, r, action)
}

// HandleUndo reverts the last swipe
func (ac *ActionController) HandleUndo(w http.ResponseWriter, r *http.Request) {
	ac.handle(w, r, services.ActionUndo)
}

// HandleReload replaces the queue with a fresh page of candidates
func (ac *ActionController) HandleReload(w http.ResponseWriter, r *http.Request) {
	ac.handle(w, r, services.ActionReload)
}

func (ac *ActionController) handle(w http.ResponseWriter, r *http.Request, action string) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sessionID := mux.Vars(r)["sessionId"]

	result, err := ac.ActionService.ProcessAction(r.Context(), requesterID, sessionID, action)
	if result == nil {
		writeError(w, err, nil)
		return
	}

	view := ac.Photos.ViewSession(r.Context(), result.Snapshot, ac.Now())
	if err != nil {
		writeError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Action:  result.Action,
		Swipe:   result.Swipe,
		Undo:    result.Undo,
		Session: view,
	})
}
