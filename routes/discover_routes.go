package routes

import (
	"vibin_discover/controllers"
	"vibin_discover/middleware"
	"vibin_discover/services"

	"github.com/gorilla/mux"
)

// RegisterDiscoverRoutes sets up routes for discover sessions under
// /api/discover. Every route requires a bearer token.
func RegisterDiscoverRoutes(r *mux.Router, actionService *services.ActionService, photos *services.PhotoService, auth *middleware.Authenticator) {
	sessions := controllers.NewSessionController(actionService.Sessions, photos)
	actions := controllers.NewActionController(actionService, photos)

	discoverRouter := r.PathPrefix("/api/discover/sessions").Subrouter()
	discoverRouter.Use(auth.Middleware)

	discoverRouter.HandleFunc("", sessions.HandleCreate).Methods("POST")
	discoverRouter.HandleFunc("/{sessionId}", sessions.HandleGet).Methods("GET")
	discoverRouter.HandleFunc("/{sessionId}", sessions.HandleDispose).Methods("DELETE")
	discoverRouter.HandleFunc("/{sessionId}/swipe", actions.HandleSwipe).Methods("POST")
	discoverRouter.HandleFunc("/{sessionId}/undo", actions.HandleUndo).Methods("POST")
	discoverRouter.HandleFunc("/{sessionId}/reload", actions.HandleReload).Methods("POST")
}
