package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vibin_discover/matching"
	"vibin_discover/models"
	"vibin_discover/services"
)

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Vibin Discover"})
}

// errorResponse is the body of every failed discover request. Remote
// failures carry the notice to show and the session state after the failure.
type errorResponse struct {
	Error   string                `json:"error"`
	Notice  *models.Notice        `json:"notice,omitempty"`
	Session *services.SessionView `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	var ferr *matching.FetchError
	var werr *matching.WriteError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.As(err, &ferr), errors.As(err, &werr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, session *services.SessionView) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Session: session}
	if status == http.StatusBadGateway {
		notice := matching.NoticeFor(err)
		resp.Notice = &notice
	}
	writeJSON(w, status, resp)
}
