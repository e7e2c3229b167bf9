package models

// SwipeDecision is one committed like/dislike for a (requester, target) pair.
type SwipeDecision struct {
	UserID       string `dynamodbav:"userId" json:"userId"`             // ✅ Partition Key
	TargetUserID string `dynamodbav:"targetUserId" json:"targetUserId"` // ✅ Sort Key
	SwipeID      string `dynamodbav:"swipeId" json:"swipeId"`
	IsLike       bool   `dynamodbav:"isLike" json:"isLike"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

// Type maps the decision onto the interaction vocabulary.
func (d SwipeDecision) Type() string {
	if d.IsLike {
		return InteractionTypeLike
	}
	return InteractionTypeDislike
}

// SwipeReceipt acknowledges a persisted decision. Matched is set when the
// store found a reciprocal like.
type SwipeReceipt struct {
	Decision SwipeDecision `json:"decision"`
	Matched  bool          `json:"matched"`
	MatchID  string        `json:"matchId,omitempty"`
}

// SwipesTable stores swipe decisions keyed by (userId, targetUserId)
const SwipesTable = "Swipes"
