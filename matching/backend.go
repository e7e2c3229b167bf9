package matching

import (
	"context"
	"time"

	"vibin_discover/models"
)

// CandidateFetcher is the remote scoring call. Ordering of the returned slice
// is authoritative; the client never re-sorts it.
type CandidateFetcher interface {
	FetchCandidates(ctx context.Context, requesterID string, limit int) ([]models.Candidate, error)
}

// SwipeWriter persists and removes swipe decisions.
type SwipeWriter interface {
	RecordSwipe(ctx context.Context, requesterID, targetID string, liked bool) (models.SwipeReceipt, error)
	// DeleteSwipe removes the decision for the pair. A missing decision is
	// either a nil error or ErrSwipeNotFound.
	DeleteSwipe(ctx context.Context, requesterID, targetID string) error
}

// Backend is everything a session needs from the hosted data store.
type Backend interface {
	CandidateFetcher
	SwipeWriter
}

// Notifier receives user-visible notices. Implementations must be safe for
// concurrent use; refill notices arrive from a background goroutine.
type Notifier interface {
	Notify(sessionID string, n models.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(sessionID string, n models.Notice)

func (f NotifierFunc) Notify(sessionID string, n models.Notice) { f(sessionID, n) }

// Observer receives counters for every remote call the session makes.
type Observer interface {
	CandidatesFetched(op string, n int, err error, elapsed time.Duration)
	SwipeRecorded(liked bool, err error, elapsed time.Duration)
	SwipeDeleted(err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) CandidatesFetched(string, int, error, time.Duration) {}
func (nopObserver) SwipeRecorded(bool, error, time.Duration)            {}
func (nopObserver) SwipeDeleted(error, time.Duration)                   {}

type nopNotifier struct{}

func (nopNotifier) Notify(string, models.Notice) {}
