package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"vibin_discover/models"
	"vibin_discover/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// InteractionService persists swipe decisions and the matches they create.
type InteractionService struct {
	Dynamo       *DynamoService
	SwipesTable  string
	MatchesTable string
	Now          func() time.Time
}

func (s *InteractionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SaveSwipe stores a like or dislike. A repeated swipe on the same target
// overwrites the previous decision.
func (s *InteractionService) SaveSwipe(ctx context.Context, userID, targetUserID string, liked bool) (models.SwipeDecision, error) {
	decision := models.SwipeDecision{
		UserID:       userID,
		TargetUserID: targetUserID,
		SwipeID:      uuid.NewString(),
		IsLike:       liked,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}

	if err := s.Dynamo.PutItem(ctx, s.SwipesTable, decision); err != nil {
		return models.SwipeDecision{}, fmt.Errorf("failed to save swipe: %w", err)
	}

	log.Printf("✅ Swipe saved: %s -> %s (%s)", userID, targetUserID, decision.Type())
	return decision, nil
}

// HasUserLiked reports whether userID has a like recorded for targetUserID.
func (s *InteractionService) HasUserLiked(ctx context.Context, userID, targetUserID string) (bool, error) {
	item, err := s.Dynamo.GetItem(ctx, s.SwipesTable, utils.StringKey("userId", userID, "targetUserId", targetUserID))
	if errors.Is(err, ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check like %s -> %s: %w", userID, targetUserID, err)
	}
	return utils.ExtractBool(item, "isLike"), nil
}

// DeleteSwipe removes the decision for the pair together with any match
// between the two users. The match goes first so a failed call can be
// retried without leaving a match behind. A missing decision is not an error.
func (s *InteractionService) DeleteSwipe(ctx context.Context, userID, targetUserID string) error {
	if _, err := s.Dynamo.DeleteItem(ctx, s.MatchesTable, utils.StringKey("matchId", MatchID(userID, targetUserID))); err != nil {
		return fmt.Errorf("failed to remove match: %w", err)
	}

	old, err := s.Dynamo.DeleteItem(ctx, s.SwipesTable, utils.StringKey("userId", userID, "targetUserId", targetUserID))
	if err != nil {
		return fmt.Errorf("failed to delete swipe: %w", err)
	}
	if old == nil {
		log.Printf("⚠️ No swipe to delete for %s -> %s", userID, targetUserID)
		return nil
	}

	log.Printf("🗑️ Swipe deleted: %s -> %s", userID, targetUserID)
	return nil
}

// CreateMatch records an active private match for the pair. The match id is
// derived from the sorted pair so both sides resolve to the same record.
func (s *InteractionService) CreateMatch(ctx context.Context, userA, userB string) (models.Match, error) {
	first, second := models.PairKey(userA, userB)
	match := models.Match{
		MatchID:   MatchID(userA, userB),
		Users:     []string{first, second},
		Type:      models.ChatTypePrivate,
		Status:    models.StatusActive,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}

	item, err := attributevalue.MarshalMap(match)
	if err != nil {
		return models.Match{}, fmt.Errorf("failed to marshal match: %w", err)
	}
	// both users liking at once must not produce two match records
	_, err = s.Dynamo.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.MatchesTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(matchId)"),
	})
	var exists *types.ConditionalCheckFailedException
	if errors.As(err, &exists) {
		return match, nil
	}
	if err != nil {
		return models.Match{}, fmt.Errorf("failed to create match: %w", err)
	}

	log.Printf("💘 Match created: %s <-> %s (%s)", first, second, match.MatchID)
	return match, nil
}

// MatchID returns the deterministic match id for a user pair.
func MatchID(userA, userB string) string {
	first, second := models.PairKey(userA, userB)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(first+"#"+second)).String()
}
