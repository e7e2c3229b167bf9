package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"vibin_discover/matching"
)

// Discover actions accepted by ProcessAction
const (
	ActionLiked    = "liked"
	ActionNotLiked = "notliked"
	ActionUndo     = "undo"
	ActionReload   = "reload"
)

// ErrInvalidAction is returned for an action name ProcessAction does not know.
var ErrInvalidAction = errors.New("invalid action")

// ActionResult is what a discover action produced, plus the session view
// after it.
type ActionResult struct {
	Action   string                `json:"action"`
	Swipe    *matching.SwipeResult `json:"swipe,omitempty"`
	Undo     *matching.UndoResult  `json:"undo,omitempty"`
	Snapshot matching.Snapshot     `json:"session"`
}

// ActionService dispatches user actions to the requester's session. The HTTP
// controllers and the socket server both go through it.
type ActionService struct {
	Sessions *SessionRegistry
}

// ProcessAction applies "liked", "notliked", "undo" or "reload" to the
// session. Remote failures come back as *matching.FetchError or
// *matching.WriteError alongside a valid snapshot.
func (as *ActionService) ProcessAction(ctx context.Context, requesterID, sessionID, action string) (*ActionResult, error) {
	session, err := as.Sessions.Get(sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Action: action}
	switch action {
	case ActionLiked, ActionNotLiked:
		swipe, serr := session.SubmitSwipe(ctx, action == ActionLiked)
		result.Swipe = &swipe
		err = serr
	case ActionUndo:
		undo, uerr := session.Undo(ctx)
		result.Undo = &undo
		err = uerr
	case ActionReload:
		err = session.LoadInitial(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if errors.Is(err, matching.ErrSessionClosed) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		log.Printf("❌ Error processing %s for session %s: %v", action, sessionID, err)
	}
	result.Snapshot = session.Snapshot()
	return result, err
}
