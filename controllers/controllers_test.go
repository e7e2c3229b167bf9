package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin_discover/matching"
	"vibin_discover/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown session", services.ErrSessionNotFound, http.StatusNotFound},
		{"invalid action", fmt.Errorf("%w: %q", services.ErrInvalidAction, "poke"), http.StatusBadRequest},
		{"fetch", &matching.FetchError{Op: "load", Err: errors.New("down")}, http.StatusBadGateway},
		{"write", &matching.WriteError{Op: "record", Err: errors.New("down")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_NoticeOnlyForRemoteFailures(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, &matching.WriteError{Op: "delete", Err: errors.New("down")}, nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Notice)
	assert.Equal(t, "Error undoing action", body.Notice.Title)

	w = httptest.NewRecorder()
	writeError(w, services.ErrSessionNotFound, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body = errorResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Notice)
	assert.Equal(t, "session not found", body.Error)
}
