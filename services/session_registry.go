package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"vibin_discover/matching"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown session ids and for sessions
// owned by another requester.
var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry owns every live discover session. Sessions are created and
// disposed explicitly; idle ones are swept.
type SessionRegistry struct {
	Backend     matching.Backend
	Options     matching.Options
	IdleTimeout time.Duration
	Now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*matching.Session
}

// NewSessionRegistry returns an empty registry. opts is the template every
// new session is created with.
func NewSessionRegistry(backend matching.Backend, opts matching.Options, idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		Backend:     backend,
		Options:     opts,
		IdleTimeout: idleTimeout,
		sessions:    map[string]*matching.Session{},
	}
}

func (r *SessionRegistry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Create starts a session for requesterID and runs the initial load. The
// session is registered even when the load fails so the caller can reload.
func (r *SessionRegistry) Create(ctx context.Context, requesterID string) (*matching.Session, error) {
	opts := r.Options
	if opts.Now == nil {
		opts.Now = r.now
	}
	session := matching.NewSession(uuid.NewString(), requesterID, r.Backend, opts)

	r.mu.Lock()
	r.sessions[session.ID()] = session
	r.mu.Unlock()

	log.Printf("🆕 Discover session %s created for %s", session.ID(), requesterID)
	return session, session.LoadInitial(ctx)
}

// Get returns the session if it exists and belongs to requesterID.
func (r *SessionRegistry) Get(sessionID, requesterID string) (*matching.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok || session.RequesterID() != requesterID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Dispose closes and forgets the session.
func (r *SessionRegistry) Dispose(sessionID, requesterID string) error {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if !ok || session.RequesterID() != requesterID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	session.Close()
	log.Printf("👋 Discover session %s disposed", sessionID)
	return nil
}

// SweepIdle disposes sessions with no user action within IdleTimeout and
// returns how many were removed.
func (r *SessionRegistry) SweepIdle() int {
	if r.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.IdleTimeout)

	var expired []*matching.Session
	r.mu.Lock()
	for id, session := range r.sessions {
		if session.LastActive().Before(cutoff) {
			expired = append(expired, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	if len(expired) > 0 {
		log.Printf("🧹 Swept %d idle discover sessions", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done, then closes all
// remaining sessions.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.SweepIdle()
		}
	}
}

// Close disposes every session.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*matching.Session{}
	r.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
