package services

import (
	"context"
	"log"
	"time"

	"vibin_discover/matching"
	"vibin_discover/models"
)

// CandidateView is a candidate as shown to the client: derived age and
// signed photo URLs in display order.
type CandidateView struct {
	models.Candidate
	Age       int      `json:"age,omitempty"`
	PhotoURLs []string `json:"photoUrls,omitempty"`
}

// SessionView is a snapshot with its current candidate rendered for display.
type SessionView struct {
	matching.Snapshot
	Current *CandidateView `json:"current,omitempty"`
}

// ViewCandidate renders c at now. A nil PhotoService leaves PhotoURLs empty;
// a signing failure is logged and the candidate is shown without photos.
func (ps *PhotoService) ViewCandidate(ctx context.Context, c models.Candidate, now time.Time) CandidateView {
	view := CandidateView{Candidate: c, Age: c.Age(now)}
	if ps == nil {
		return view
	}
	urls, err := ps.SignPhotos(ctx, c.Photos)
	if err != nil {
		log.Printf("⚠️ Could not sign photos for %s: %v", c.UserID, err)
		return view
	}
	view.PhotoURLs = urls
	return view
}

// ViewSession renders snap for the client.
func (ps *PhotoService) ViewSession(ctx context.Context, snap matching.Snapshot, now time.Time) SessionView {
	view := SessionView{Snapshot: snap}
	if snap.Current != nil {
		current := ps.ViewCandidate(ctx, *snap.Current, now)
		view.Current = &current
	}
	return view
}
