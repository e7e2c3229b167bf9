package models

import "sort"

type Match struct {
	MatchID   string   `dynamodbav:"matchId" json:"matchId"`     // Deterministic per user pair
	Users     []string `dynamodbav:"users" json:"users"`         // Sorted pair
	Type      string   `dynamodbav:"type" json:"type"`           // "private"
	Status    string   `dynamodbav:"status" json:"status"`       // active
	CreatedAt string   `dynamodbav:"createdAt" json:"createdAt"` // Timestamp of creation
}

// PairKey orders two user ids so both sides of a match share one key.
func PairKey(a, b string) (string, string) {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0], pair[1]
}

// MatchesTable is the DynamoDB table name for user matches
const MatchesTable = "Matches"
