package models

import "time"

// Candidate is a read-only snapshot of a prospective match at fetch time.
type Candidate struct {
	UserID           string   `dynamodbav:"candidateId" json:"userId"`
	Name             string   `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Bio              string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Birthday         string   `dynamodbav:"birthday,omitempty" json:"birthday,omitempty"` // YYYY-MM-DD
	Occupation       string   `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	Education        string   `dynamodbav:"education,omitempty" json:"education,omitempty"`
	Interests        []string `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	LocationName     string   `dynamodbav:"locationName,omitempty" json:"locationName,omitempty"`
	DistanceKm       float64  `dynamodbav:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	Photos           []string `dynamodbav:"photos,omitempty" json:"photos,omitempty"` // storage keys, display order
	PersonalityMatch int      `dynamodbav:"personalityMatch" json:"personalityMatch"` // 0-100, computed server side
}

// Age derives the candidate's age at now from the birthday. Returns 0 when
// the birthday is missing or unparseable.
func (c Candidate) Age(now time.Time) int {
	if c.Birthday == "" {
		return 0
	}
	born, err := ParseBirthday(c.Birthday)
	if err != nil {
		return 0
	}
	return AgeAt(born, now)
}

// ParseBirthday accepts a plain date or an RFC3339 timestamp.
func ParseBirthday(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// AgeAt counts whole years between born and now.
func AgeAt(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// CandidatesTable holds pre-scored candidate pages per requester.
// PK: requesterId, SK: rankKey (ascending = best first)
const CandidatesTable = "PotentialMatches"
