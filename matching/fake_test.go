package matching

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"vibin_discover/models"
)

type swipeCall struct {
	target string
	liked  bool
}

// fakeBackend serves pages in order and records every write.
type fakeBackend struct {
	mu          sync.Mutex
	pages       [][]models.Candidate
	fetchCalls  int
	fetchErr    error
	fetchGate   chan struct{} // when set, fetches after the first block on it
	records     []swipeCall
	recordErr   error
	recordGate  chan struct{}
	matchOnLike map[string]bool
	deletes     []string
	deleteErr   error
	swipes      map[string]bool
}

func newFakeBackend(pages ...[]models.Candidate) *fakeBackend {
	return &fakeBackend{pages: pages, swipes: map[string]bool{}, matchOnLike: map[string]bool{}}
}

func (f *fakeBackend) FetchCandidates(ctx context.Context, requesterID string, limit int) ([]models.Candidate, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	gate := f.fetchGate
	f.mu.Unlock()

	if gate != nil && call > 1 {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.pages) == 0 {
		return nil, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	if len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}

func (f *fakeBackend) RecordSwipe(ctx context.Context, requesterID, targetID string, liked bool) (models.SwipeReceipt, error) {
	f.mu.Lock()
	gate := f.recordGate
	f.records = append(f.records, swipeCall{target: targetID, liked: liked})
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return models.SwipeReceipt{}, f.recordErr
	}
	f.swipes[targetID] = liked
	return models.SwipeReceipt{
		Decision: models.SwipeDecision{UserID: requesterID, TargetUserID: targetID, IsLike: liked},
		Matched:  liked && f.matchOnLike[targetID],
	}, nil
}

func (f *fakeBackend) DeleteSwipe(ctx context.Context, requesterID, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, targetID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.swipes[targetID]; !ok {
		return ErrSwipeNotFound
	}
	delete(f.swipes, targetID)
	return nil
}

func (f *fakeBackend) counts() (fetches, records, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, len(f.records), len(f.deletes)
}

func (f *fakeBackend) setRecordErr(err error) {
	f.mu.Lock()
	f.recordErr = err
	f.mu.Unlock()
}

func (f *fakeBackend) setDeleteErr(err error) {
	f.mu.Lock()
	f.deleteErr = err
	f.mu.Unlock()
}

func (f *fakeBackend) setFetchErr(err error) {
	f.mu.Lock()
	f.fetchErr = err
	f.mu.Unlock()
}

func candidates(prefix string, n int) []models.Candidate {
	out := make([]models.Candidate, n)
	for i := range out {
		out[i] = models.Candidate{UserID: fmt.Sprintf("%s%d", prefix, i), Name: fmt.Sprintf("%s %d", prefix, i)}
	}
	return out
}

func named(ids ...string) []models.Candidate {
	out := make([]models.Candidate, len(ids))
	for i, id := range ids {
		out[i] = models.Candidate{UserID: id}
	}
	return out
}

// noticeLog collects notices delivered to a session.
type noticeLog struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (n *noticeLog) Notify(_ string, notice models.Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
}

func (n *noticeLog) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notices))
	for i, notice := range n.notices {
		out[i] = notice.Title
	}
	return out
}

var errBoom = errors.New("boom")

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }
