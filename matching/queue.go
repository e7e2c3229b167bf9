package matching

import (
	"context"
	"sync"
	"time"

	"vibin_discover/models"
)

const (
	opLoad   = "load"
	opRefill = "refill"
	opRecord = "record"
	opDelete = "delete"
)

// DefaultRefillThreshold is the number of undecided candidates left in the
// queue at which a refill fetch is issued.
const DefaultRefillThreshold = 2

// QueueManager holds the ordered candidate list and the cursor into it.
// The list only grows by appending; a new LoadInitial replaces it wholesale.
// The mutex is never held across a remote call.
type QueueManager struct {
	fetcher   CandidateFetcher
	observer  Observer
	threshold int
	dedupe    bool

	mu         sync.Mutex
	candidates []models.Candidate
	cursor     int
	seen       map[string]struct{}
	epoch      uint64 // bumped when a load replaces the queue; stale results are dropped
	loads      uint64 // bumped when a load starts; only the newest one applies
	loading    bool
	refilling  bool
	closed     bool
}

// NewQueueManager returns an empty queue. threshold <= 0 selects
// DefaultRefillThreshold. With dedupe set, candidates whose id is already in
// the queue are dropped from refill pages.
func NewQueueManager(fetcher CandidateFetcher, threshold int, dedupe bool, observer Observer) *QueueManager {
	if threshold <= 0 {
		threshold = DefaultRefillThreshold
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &QueueManager{
		fetcher:   fetcher,
		observer:  observer,
		threshold: threshold,
		dedupe:    dedupe,
		seen:      map[string]struct{}{},
	}
}

// LoadInitial fetches up to pageSize candidates and replaces the queue,
// resetting the cursor to 0. On failure the previous queue is kept.
func (q *QueueManager) LoadInitial(ctx context.Context, requesterID string, pageSize int) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrSessionClosed
	}
	q.loads++
	seq := q.loads
	q.loading = true
	q.mu.Unlock()

	start := time.Now()
	candidates, err := q.fetcher.FetchCandidates(ctx, requesterID, pageSize)
	q.observer.CandidatesFetched(opLoad, len(candidates), err, time.Since(start))

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrSessionClosed
	}
	if seq != q.loads {
		// a newer load owns the queue now
		return nil
	}
	q.loading = false
	if err != nil {
		return &FetchError{Op: opLoad, RequesterID: requesterID, Err: err}
	}

	q.epoch++
	q.candidates = make([]models.Candidate, 0, len(candidates))
	q.seen = make(map[string]struct{}, len(candidates))
	q.cursor = 0
	q.appendLocked(candidates, q.dedupe)
	return nil
}

// RefillIfNeeded appends another page when at most threshold undecided
// candidates remain. It reports whether a fetch was issued. A refill already
// in flight makes this a no-op.
func (q *QueueManager) RefillIfNeeded(ctx context.Context, requesterID string, pageSize int) (bool, error) {
	epoch, ok := q.beginRefill()
	if !ok {
		return false, nil
	}
	return true, q.refill(ctx, requesterID, pageSize, epoch)
}

// beginRefill claims the refill slot when a refill is due.
func (q *QueueManager) beginRefill() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.refilling || !q.needsRefillLocked() {
		return 0, false
	}
	q.refilling = true
	return q.epoch, true
}

func (q *QueueManager) refill(ctx context.Context, requesterID string, pageSize int, epoch uint64) error {
	start := time.Now()
	candidates, err := q.fetcher.FetchCandidates(ctx, requesterID, pageSize)
	q.observer.CandidatesFetched(opRefill, len(candidates), err, time.Since(start))

	q.mu.Lock()
	defer q.mu.Unlock()
	q.refilling = false
	if q.closed {
		return ErrSessionClosed
	}
	if epoch != q.epoch {
		return nil
	}
	if err != nil {
		return &FetchError{Op: opRefill, RequesterID: requesterID, Err: err}
	}
	q.appendLocked(candidates, q.dedupe)
	return nil
}

// NeedsRefill reports whether the remaining count is at or below the
// threshold and no refill is in flight.
func (q *QueueManager) NeedsRefill() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.closed && !q.refilling && q.needsRefillLocked()
}

func (q *QueueManager) needsRefillLocked() bool {
	return len(q.candidates)-q.cursor <= q.threshold
}

func (q *QueueManager) appendLocked(candidates []models.Candidate, dedupe bool) {
	for _, c := range candidates {
		if dedupe {
			if _, dup := q.seen[c.UserID]; dup {
				continue
			}
		}
		q.seen[c.UserID] = struct{}{}
		q.candidates = append(q.candidates, c)
	}
}

// Current returns the candidate at the cursor.
func (q *QueueManager) Current() (models.Candidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cursor >= len(q.candidates) {
		return models.Candidate{}, false
	}
	return q.candidates[q.cursor], true
}

// HasMore reports whether an undecided candidate remains.
func (q *QueueManager) HasMore() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor < len(q.candidates)
}

func (q *QueueManager) Cursor() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor
}

func (q *QueueManager) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.candidates)
}

// position is the cursor and epoch a remote call was issued against.
type position struct {
	index int
	epoch uint64
}

func (q *QueueManager) peek() (models.Candidate, position, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.cursor >= len(q.candidates) {
		return models.Candidate{}, position{}, false
	}
	return q.candidates[q.cursor], position{index: q.cursor, epoch: q.epoch}, true
}

func (q *QueueManager) peekPrevious() (models.Candidate, position, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.cursor == 0 {
		return models.Candidate{}, position{}, false
	}
	return q.candidates[q.cursor-1], position{index: q.cursor - 1, epoch: q.epoch}, true
}

// advanceFrom moves the cursor past p.index if the queue is still the one
// the commit was issued against.
func (q *QueueManager) advanceFrom(p position) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || p.epoch != q.epoch || q.cursor != p.index {
		return false
	}
	q.cursor++
	return true
}

// retreatTo moves the cursor back onto p.index after an undo.
func (q *QueueManager) retreatTo(p position) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || p.epoch != q.epoch || q.cursor != p.index+1 {
		return false
	}
	q.cursor = p.index
	return true
}

func (q *QueueManager) status() (loading, refilling bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading, q.refilling
}

func (q *QueueManager) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
