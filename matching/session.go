package matching

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"vibin_discover/models"
)

// DefaultPageSize matches the page size the scoring call is tuned for.
const DefaultPageSize = 10

// Options configures a Session. The zero value is usable.
type Options struct {
	PageSize        int
	RefillThreshold int
	// Dedupe drops candidates already present in the queue. The scoring call
	// may return undecided candidates again on refill, since they have no
	// swipe recorded yet.
	Dedupe   bool
	Logger   *log.Logger
	Debug    bool // log ignored actions
	Notifier Notifier
	Observer Observer
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.RefillThreshold <= 0 {
		o.RefillThreshold = DefaultRefillThreshold
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// SwipeResult describes the outcome of SubmitSwipe.
type SwipeResult struct {
	Ignored   bool                 `json:"ignored"`
	Candidate *models.Candidate    `json:"candidate,omitempty"`
	Receipt   *models.SwipeReceipt `json:"receipt,omitempty"`
}

// UndoResult describes the outcome of Undo.
type UndoResult struct {
	Ignored   bool              `json:"ignored"`
	Candidate *models.Candidate `json:"candidate,omitempty"`
}

// Snapshot is a consistent read of the session for rendering.
type Snapshot struct {
	SessionID   string            `json:"sessionId"`
	RequesterID string            `json:"requesterId"`
	State       string            `json:"state"`
	Cursor      int               `json:"cursor"`
	Length      int               `json:"length"`
	Current     *models.Candidate `json:"current,omitempty"`
	HasMore     bool              `json:"hasMore"`
	Loading     bool              `json:"loading"`
	Refilling   bool              `json:"refilling"`
	CanUndo     bool              `json:"canUndo"`
}

// Session is one requester's discover session: the candidate queue plus the
// swipe controller. Create it with NewSession and dispose it with Close.
type Session struct {
	id          string
	requesterID string
	backend     Backend
	queue       *QueueManager
	opts        Options

	ctx    context.Context // parent of background refills
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	last       *models.SwipeDecision // only decision reachable by Undo
	lastPos    position
	lastActive time.Time
}

// NewSession creates an idle session with an empty queue. Call LoadInitial to
// populate it.
func NewSession(id, requesterID string, backend Backend, opts Options) *Session {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:          id,
		requesterID: requesterID,
		backend:     backend,
		queue:       NewQueueManager(backend, opts.RefillThreshold, opts.Dedupe, opts.Observer),
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		state:       StateIdle,
		lastActive:  opts.Now(),
	}
}

func (s *Session) ID() string          { return s.id }
func (s *Session) RequesterID() string { return s.requesterID }

// State returns the controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive is the time of the last user action on the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// LoadInitial replaces the queue with a fresh page from the scoring call.
// Decisions made against the previous queue stop being undoable.
func (s *Session) LoadInitial(ctx context.Context) error {
	s.touch()
	err := s.queue.LoadInitial(ctx, s.requesterID, s.opts.PageSize)
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		s.opts.Logger.Printf("❌ Error loading matches for %s: %v", s.requesterID, err)
		s.opts.Notifier.Notify(s.id, NoticeFor(err))
		return err
	}
	if err == nil {
		s.opts.Logger.Printf("✅ Loaded %d candidates for %s", s.queue.Len(), s.requesterID)
	}
	return err
}

// RefillIfNeeded runs the refill check synchronously on the caller's context.
func (s *Session) RefillIfNeeded(ctx context.Context) (bool, error) {
	fetched, err := s.queue.RefillIfNeeded(ctx, s.requesterID, s.opts.PageSize)
	s.reportRefill(err)
	return fetched, err
}

func (s *Session) reportRefill(err error) {
	if err == nil || errors.Is(err, ErrSessionClosed) {
		return
	}
	s.opts.Logger.Printf("❌ Error refilling matches for %s: %v", s.requesterID, err)
	s.opts.Notifier.Notify(s.id, NoticeFor(err))
}

// Current returns the candidate at the cursor.
func (s *Session) Current() (models.Candidate, bool) { return s.queue.Current() }

// HasMore reports whether an undecided candidate remains.
func (s *Session) HasMore() bool { return s.queue.HasMore() }

// Cursor returns the index of the next undecided candidate.
func (s *Session) Cursor() int { return s.queue.Cursor() }

// SubmitSwipe commits a like or dislike for the current candidate. It is
// ignored while another remote call is in flight or when no candidate is
// current. On failure the cursor is not advanced and a *WriteError is
// returned; the user may retry the same swipe.
func (s *Session) SubmitSwipe(ctx context.Context, liked bool) (SwipeResult, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return SwipeResult{Ignored: true}, ErrSessionClosed
	}
	s.lastActive = s.opts.Now()
	if s.state != StateIdle {
		g := GuardViolation{Op: "swipe", State: s.state, Reason: "swipe in flight"}
		s.mu.Unlock()
		s.ignore(g)
		return SwipeResult{Ignored: true}, nil
	}
	candidate, pos, ok := s.queue.peek()
	if !ok {
		g := GuardViolation{Op: "swipe", State: s.state, Reason: "no current candidate"}
		s.mu.Unlock()
		s.ignore(g)
		return SwipeResult{Ignored: true}, nil
	}
	s.setState(StateProcessing)
	s.mu.Unlock()

	start := time.Now()
	receipt, err := s.backend.RecordSwipe(ctx, s.requesterID, candidate.UserID, liked)
	s.opts.Observer.SwipeRecorded(liked, err, time.Since(start))

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return SwipeResult{Ignored: true}, ErrSessionClosed
	}
	s.setState(StateIdle)

	if err != nil {
		s.mu.Unlock()
		werr := &WriteError{Op: opRecord, RequesterID: s.requesterID, TargetID: candidate.UserID, Err: err}
		s.opts.Logger.Printf("❌ Error processing swipe: %v", werr)
		s.opts.Notifier.Notify(s.id, NoticeFor(werr))
		return SwipeResult{Candidate: &candidate}, werr
	}

	if receipt.Decision.TargetUserID == "" {
		receipt.Decision = models.SwipeDecision{
			UserID:       s.requesterID,
			TargetUserID: candidate.UserID,
			IsLike:       liked,
			CreatedAt:    s.opts.Now().UTC().Format(time.RFC3339),
		}
	}

	if !s.queue.advanceFrom(pos) {
		s.last = nil
		s.mu.Unlock()
		// queue was replaced by a reload while the write was in flight
		s.opts.Logger.Printf("⚠️ Swipe %s -> %s committed against a replaced queue", s.requesterID, candidate.UserID)
		return SwipeResult{Candidate: &candidate, Receipt: &receipt}, nil
	}
	decision := receipt.Decision
	s.last = &decision
	s.lastPos = pos
	s.startRefillLocked()
	s.mu.Unlock()

	s.opts.Logger.Printf("✅ Swipe saved: %s -> %s (%s)", s.requesterID, candidate.UserID, decision.Type())
	switch {
	case receipt.Matched:
		s.opts.Notifier.Notify(s.id, noticeMatched)
	case liked:
		s.opts.Notifier.Notify(s.id, noticeLikeSent)
	}
	return SwipeResult{Candidate: &candidate, Receipt: &receipt}, nil
}

// Undo removes the most recent decision and moves the cursor back onto its
// candidate. Only one step is reachable: the decision committed at cursor-1.
// On failure the cursor is unchanged and a *WriteError is returned.
func (s *Session) Undo(ctx context.Context) (UndoResult, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return UndoResult{Ignored: true}, ErrSessionClosed
	}
	s.lastActive = s.opts.Now()
	if s.state != StateIdle {
		g := GuardViolation{Op: "undo", State: s.state, Reason: "swipe in flight"}
		s.mu.Unlock()
		s.ignore(g)
		return UndoResult{Ignored: true}, nil
	}
	candidate, pos, ok := s.queue.peekPrevious()
	if !ok {
		g := GuardViolation{Op: "undo", State: s.state, Reason: "cursor at start"}
		s.mu.Unlock()
		s.ignore(g)
		return UndoResult{Ignored: true}, nil
	}
	if s.last == nil || s.lastPos != pos || s.last.TargetUserID != candidate.UserID {
		g := GuardViolation{Op: "undo", State: s.state, Reason: "no undoable decision"}
		s.mu.Unlock()
		s.ignore(g)
		return UndoResult{Ignored: true}, nil
	}
	s.setState(StateProcessing)
	s.mu.Unlock()

	start := time.Now()
	err := s.backend.DeleteSwipe(ctx, s.requesterID, candidate.UserID)
	if errors.Is(err, ErrSwipeNotFound) {
		err = nil
	}
	s.opts.Observer.SwipeDeleted(err, time.Since(start))

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return UndoResult{Ignored: true}, ErrSessionClosed
	}
	s.setState(StateIdle)

	if err != nil {
		s.mu.Unlock()
		werr := &WriteError{Op: opDelete, RequesterID: s.requesterID, TargetID: candidate.UserID, Err: err}
		s.opts.Logger.Printf("❌ Error undoing swipe: %v", werr)
		s.opts.Notifier.Notify(s.id, NoticeFor(werr))
		return UndoResult{Candidate: &candidate}, werr
	}

	s.last = nil
	retreated := s.queue.retreatTo(pos)
	s.mu.Unlock()

	if !retreated {
		s.opts.Logger.Printf("⚠️ Undo %s -> %s applied against a replaced queue", s.requesterID, candidate.UserID)
		return UndoResult{Candidate: &candidate}, nil
	}
	s.opts.Logger.Printf("↩️ Swipe undone: %s -> %s", s.requesterID, candidate.UserID)
	s.opts.Notifier.Notify(s.id, noticeUndone)
	return UndoResult{Candidate: &candidate}, nil
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:   s.id,
		RequesterID: s.requesterID,
		State:       s.state.String(),
	}
	s.queue.mu.Lock()
	snap.Cursor = s.queue.cursor
	snap.Length = len(s.queue.candidates)
	snap.HasMore = s.queue.cursor < len(s.queue.candidates)
	if snap.HasMore {
		c := s.queue.candidates[s.queue.cursor]
		snap.Current = &c
	}
	snap.Loading = s.queue.loading
	snap.Refilling = s.queue.refilling
	snap.CanUndo = s.state == StateIdle && s.last != nil &&
		s.lastPos.epoch == s.queue.epoch && s.lastPos.index == s.queue.cursor-1
	s.queue.mu.Unlock()
	return snap
}

// Close disposes the session. In-flight calls are abandoned: their results
// are discarded and the queue is never mutated after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.setState(StateClosed)
	s.last = nil
	s.mu.Unlock()

	s.queue.close()
	s.cancel()
	s.wg.Wait()
}

// startRefillLocked claims the refill slot synchronously so a second commit
// landing before the goroutine runs cannot start another fetch.
func (s *Session) startRefillLocked() {
	epoch, ok := s.queue.beginRefill()
	if !ok {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.queue.refill(s.ctx, s.requesterID, s.opts.PageSize, epoch)
		s.reportRefill(err)
	}()
}

func (s *Session) setState(to State) {
	if err := transition(s.state, to); err != nil {
		// unreachable unless a guard above is wrong
		panic(err)
	}
	s.state = to
}

func (s *Session) ignore(g GuardViolation) {
	if s.opts.Debug {
		s.opts.Logger.Printf("⏭️ %s: %v", s.id, g)
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.opts.Now()
	s.mu.Unlock()
}
