package controllers

import (
	"log"
	"net/http"
	"time"

	"vibin_discover/middleware"
	"vibin_discover/services"

	"github.com/gorilla/mux"
)

// SessionController handles the discover session lifecycle
type SessionController struct {
	Sessions *services.SessionRegistry
	Photos   *services.PhotoService
	Now      func() time.Time
}

// NewSessionController creates a new SessionController instance
func NewSessionController(sessions *services.SessionRegistry, photos *services.PhotoService) *SessionController {
	return &SessionController{Sessions: sessions, Photos: photos, Now: time.Now}
}

// HandleCreate starts a session for the caller and loads the first page. A
// failed load still returns the session so the client can reload it.
func (sc *SessionController) HandleCreate(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := sc.Sessions.Create(r.Context(), requesterID)
	view := sc.Photos.ViewSession(r.Context(), session.Snapshot(), sc.Now())
	if err != nil {
		log.Printf("❌ Initial load failed for session %s: %v", session.ID(), err)
		writeError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet returns the caller's session
func (sc *SessionController) HandleGet(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := sc.Sessions.Get(mux.Vars(r)["sessionId"], requesterID)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sc.Photos.ViewSession(r.Context(), session.Snapshot(), sc.Now()))
}

// HandleDispose closes the caller's session
func (sc *SessionController) HandleDispose(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	if err := sc.Sessions.Dispose(sessionID, requesterID); err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session closed", "sessionId": sessionID})
}
