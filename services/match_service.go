package services

import (
	"context"
	"fmt"
	"log"

	"vibin_discover/models"
	"vibin_discover/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MatchService reads the pre-scored candidate pages. Scores and ordering are
// produced elsewhere; this service only filters out decided targets.
type MatchService struct {
	Dynamo          *DynamoService
	CandidatesTable string
	SwipesTable     string
}

// GetDecidedTargets returns every target userID has swiped on.
func (s *MatchService) GetDecidedTargets(ctx context.Context, userID string) (map[string]struct{}, error) {
	decided := map[string]struct{}{}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.SwipesTable),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ProjectionExpression: aws.String("targetUserId"),
	}

	err := s.Dynamo.QueryPages(ctx, input, func(items []map[string]types.AttributeValue) bool {
		for _, item := range items {
			if target := utils.ExtractString(item, "targetUserId"); target != "" {
				decided[target] = struct{}{}
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch decided targets: %w", err)
	}
	return decided, nil
}

// GetPotentialMatches returns up to limit candidates for userID in rank
// order, skipping the user themselves and anyone already swiped on.
func (s *MatchService) GetPotentialMatches(ctx context.Context, userID string, limit int) ([]models.Candidate, error) {
	decided, err := s.GetDecidedTargets(ctx, userID)
	if err != nil {
		return nil, err
	}
	decided[userID] = struct{}{}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.CandidatesTable),
		KeyConditionExpression: aws.String("requesterId = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(true), // rankKey ascending = best first
	}

	candidates := make([]models.Candidate, 0, limit)
	var decodeErr error
	err = s.Dynamo.QueryPages(ctx, input, func(items []map[string]types.AttributeValue) bool {
		for _, item := range items {
			var c models.Candidate
			if err := attributevalue.UnmarshalMap(item, &c); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal candidate: %w", err)
				return false
			}
			if _, skip := decided[c.UserID]; skip {
				continue
			}
			candidates = append(candidates, c)
			if len(candidates) == limit {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch potential matches: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	log.Printf("✅ Retrieved %d potential matches for %s", len(candidates), userID)
	return candidates, nil
}
