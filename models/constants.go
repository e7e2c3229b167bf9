package models

// ✅ Interaction Types
const (
	InteractionTypeLike    = "like"
	InteractionTypeDislike = "dislike"
)

// ✅ Chat Types
const (
	ChatTypePrivate = "private"
)

// ✅ Match Statuses
const (
	StatusActive = "active"
)

// ✅ Notice Variants
const (
	NoticeDefault     = "default"
	NoticeDestructive = "destructive"
)
