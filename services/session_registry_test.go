package services

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin_discover/matching"
	"vibin_discover/models"
)

func newTestRegistry(t *testing.T, clock *time.Time) (*SessionRegistry, *fakeDynamo) {
	t.Helper()
	store, fake := newTestStore()
	fake.seedCandidates("me",
		models.Candidate{UserID: "ana"},
		models.Candidate{UserID: "bo"},
		models.Candidate{UserID: "cy"},
		models.Candidate{UserID: "di"},
		models.Candidate{UserID: "ed"},
	)
	reg := NewSessionRegistry(store, matching.Options{Logger: log.New(io.Discard, "", 0), Dedupe: true}, time.Minute)
	if clock != nil {
		reg.Now = func() time.Time { return *clock }
	}
	t.Cleanup(reg.Close)
	return reg, fake
}

func TestSessionRegistry_Lifecycle(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	session, err := reg.Create(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 5, session.Snapshot().Length)

	got, err := reg.Get(session.ID(), "me")
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = reg.Get(session.ID(), "intruder")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, reg.Dispose(session.ID(), "intruder"), ErrSessionNotFound)

	require.NoError(t, reg.Dispose(session.ID(), "me"))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, matching.StateClosed, session.State())

	_, err = reg.Get(session.ID(), "me")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRegistry_CreateKeepsSessionOnLoadFailure(t *testing.T) {
	reg, fake := newTestRegistry(t, nil)
	fake.queryErr = errors.New("unavailable")

	session, err := reg.Create(context.Background(), "me")
	var ferr *matching.FetchError
	require.ErrorAs(t, err, &ferr)
	require.NotNil(t, session)
	assert.Equal(t, 1, reg.Len())
	assert.False(t, session.HasMore())

	fake.queryErr = nil
	require.NoError(t, session.LoadInitial(context.Background()))
	assert.True(t, session.HasMore())
}

func TestSessionRegistry_SweepIdle(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	reg, _ := newTestRegistry(t, &clock)
	ctx := context.Background()

	stale, err := reg.Create(ctx, "me")
	require.NoError(t, err)

	clock = clock.Add(45 * time.Second)
	fresh, err := reg.Create(ctx, "me")
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, reg.SweepIdle())
	assert.Equal(t, matching.StateClosed, stale.State())
	assert.Equal(t, matching.StateIdle, fresh.State())

	_, err = reg.Get(fresh.ID(), "me")
	assert.NoError(t, err)
}

func TestActionService_ProcessAction(t *testing.T) {
	reg, fake := newTestRegistry(t, nil)
	svc := &ActionService{Sessions: reg}
	ctx := context.Background()

	session, err := reg.Create(ctx, "me")
	require.NoError(t, err)

	res, err := svc.ProcessAction(ctx, "me", session.ID(), ActionLiked)
	require.NoError(t, err)
	require.NotNil(t, res.Swipe)
	assert.Equal(t, "ana", res.Swipe.Candidate.UserID)
	assert.Equal(t, 1, res.Snapshot.Cursor)
	assert.True(t, res.Snapshot.CanUndo)
	assert.Equal(t, 1, fake.count("Swipes"))

	res, err = svc.ProcessAction(ctx, "me", session.ID(), ActionUndo)
	require.NoError(t, err)
	require.NotNil(t, res.Undo)
	assert.False(t, res.Undo.Ignored)
	assert.Equal(t, 0, res.Snapshot.Cursor)
	assert.Zero(t, fake.count("Swipes"))

	res, err = svc.ProcessAction(ctx, "me", session.ID(), ActionNotLiked)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Snapshot.Cursor)

	res, err = svc.ProcessAction(ctx, "me", session.ID(), ActionReload)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Snapshot.Cursor)
	assert.Equal(t, "bo", res.Snapshot.Current.UserID, "reload skips decided candidates")

	_, err = svc.ProcessAction(ctx, "me", session.ID(), "superlike")
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = svc.ProcessAction(ctx, "me", "missing", ActionLiked)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestActionService_WriteFailureReturnsSnapshot(t *testing.T) {
	reg, fake := newTestRegistry(t, nil)
	svc := &ActionService{Sessions: reg}
	ctx := context.Background()

	session, err := reg.Create(ctx, "me")
	require.NoError(t, err)
	fake.putErr = errors.New("network down")

	res, err := svc.ProcessAction(ctx, "me", session.ID(), ActionLiked)
	var werr *matching.WriteError
	require.ErrorAs(t, err, &werr)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Snapshot.Cursor)
	assert.Equal(t, "ana", res.Snapshot.Current.UserID)
}
