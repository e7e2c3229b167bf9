package services

import (
	"context"
	"log"

	"vibin_discover/matching"
	"vibin_discover/models"
)

// DynamoDiscoverStore is the DynamoDB-backed matching.Backend.
type DynamoDiscoverStore struct {
	Matches      *MatchService
	Interactions *InteractionService
}

var _ matching.Backend = (*DynamoDiscoverStore)(nil)

// NewDynamoDiscoverStore wires both services onto one DynamoService.
func NewDynamoDiscoverStore(dynamo *DynamoService, candidatesTable, swipesTable, matchesTable string) *DynamoDiscoverStore {
	return &DynamoDiscoverStore{
		Matches: &MatchService{
			Dynamo:          dynamo,
			CandidatesTable: candidatesTable,
			SwipesTable:     swipesTable,
		},
		Interactions: &InteractionService{
			Dynamo:       dynamo,
			SwipesTable:  swipesTable,
			MatchesTable: matchesTable,
		},
	}
}

func (s *DynamoDiscoverStore) FetchCandidates(ctx context.Context, requesterID string, limit int) ([]models.Candidate, error) {
	return s.Matches.GetPotentialMatches(ctx, requesterID, limit)
}

// RecordSwipe saves the decision and, for a like answered by a reciprocal
// like, creates the match. Once the decision is stored the swipe has
// succeeded; a failed match step is logged and reported as no match.
func (s *DynamoDiscoverStore) RecordSwipe(ctx context.Context, requesterID, targetID string, liked bool) (models.SwipeReceipt, error) {
	decision, err := s.Interactions.SaveSwipe(ctx, requesterID, targetID, liked)
	if err != nil {
		return models.SwipeReceipt{}, err
	}
	receipt := models.SwipeReceipt{Decision: decision}
	if !liked {
		return receipt, nil
	}

	mutual, err := s.Interactions.HasUserLiked(ctx, targetID, requesterID)
	if err != nil {
		log.Printf("⚠️ Failed to check mutual like %s <-> %s: %v", requesterID, targetID, err)
		return receipt, nil
	}
	if !mutual {
		return receipt, nil
	}

	match, err := s.Interactions.CreateMatch(ctx, requesterID, targetID)
	if err != nil {
		log.Printf("⚠️ Swipe saved but match not created for %s <-> %s: %v", requesterID, targetID, err)
		return receipt, nil
	}
	receipt.Matched = true
	receipt.MatchID = match.MatchID
	return receipt, nil
}

func (s *DynamoDiscoverStore) DeleteSwipe(ctx context.Context, requesterID, targetID string) error {
	return s.Interactions.DeleteSwipe(ctx, requesterID, targetID)
}
