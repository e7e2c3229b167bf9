package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"vibin_discover/matching"
	"vibin_discover/models"

	"github.com/lib/pq"
)

// PostgresDiscoverStore is the matching.Backend for the hosted Postgres
// schema: the get_potential_matches function, the swipes table, and the
// matches table maintained by a database trigger.
type PostgresDiscoverStore struct {
	DB *sql.DB
}

var _ matching.Backend = (*PostgresDiscoverStore)(nil)

// OpenPostgresDiscoverStore connects with lib/pq and checks the connection.
func OpenPostgresDiscoverStore(ctx context.Context, databaseURL string) (*PostgresDiscoverStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PostgresDiscoverStore{DB: db}, nil
}

const potentialMatchesQuery = `
SELECT user_id, full_name, bio, birthday, occupation, education, interests,
       location_name, distance_km, personality_match
FROM get_potential_matches($1, $2)`

const candidatePhotosQuery = `
SELECT user_id, file_path
FROM photos
WHERE user_id = ANY($1) AND (status IS NULL OR status = 'approved')
ORDER BY user_id, photo_order`

// FetchCandidates calls the scoring function and attaches each candidate's
// approved photo paths in display order.
func (s *PostgresDiscoverStore) FetchCandidates(ctx context.Context, requesterID string, limit int) ([]models.Candidate, error) {
	rows, err := s.DB.QueryContext(ctx, potentialMatchesQuery, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to call get_potential_matches: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read potential matches: %w", err)
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	if err := s.attachPhotos(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var (
		c          models.Candidate
		name       sql.NullString
		bio        sql.NullString
		birthday   sql.NullString
		occupation sql.NullString
		education  sql.NullString
		location   sql.NullString
		distance   sql.NullFloat64
		score      sql.NullInt64
		interests  []string
	)
	err := row.Scan(&c.UserID, &name, &bio, &birthday, &occupation, &education,
		pq.Array(&interests), &location, &distance, &score)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to scan candidate: %w", err)
	}
	c.Name = name.String
	c.Bio = bio.String
	c.Birthday = birthday.String
	c.Occupation = occupation.String
	c.Education = education.String
	c.Interests = interests
	c.LocationName = location.String
	c.DistanceKm = distance.Float64
	c.PersonalityMatch = int(score.Int64)
	return c, nil
}

func (s *PostgresDiscoverStore) attachPhotos(ctx context.Context, candidates []models.Candidate) error {
	ids := make([]string, len(candidates))
	index := make(map[string][]int, len(candidates))
	for i, c := range candidates {
		ids[i] = c.UserID
		index[c.UserID] = append(index[c.UserID], i)
	}

	rows, err := s.DB.QueryContext(ctx, candidatePhotosQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch candidate photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, path string
		if err := rows.Scan(&userID, &path); err != nil {
			return fmt.Errorf("failed to scan photo: %w", err)
		}
		for _, i := range index[userID] {
			candidates[i].Photos = append(candidates[i].Photos, path)
		}
	}
	return rows.Err()
}

// RecordSwipe inserts the decision. A unique-constraint violation is
// reported as a failed write.
func (s *PostgresDiscoverStore) RecordSwipe(ctx context.Context, requesterID, targetID string, liked bool) (models.SwipeReceipt, error) {
	decision := models.SwipeDecision{UserID: requesterID, TargetUserID: targetID, IsLike: liked}

	var createdAt time.Time
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO swipes (user_id, target_user_id, is_like) VALUES ($1, $2, $3) RETURNING id, created_at`,
		requesterID, targetID, liked,
	).Scan(&decision.SwipeID, &createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.SwipeReceipt{}, fmt.Errorf("swipe %s -> %s already recorded: %w", requesterID, targetID, err)
		}
		return models.SwipeReceipt{}, fmt.Errorf("failed to insert swipe: %w", err)
	}
	decision.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	receipt := models.SwipeReceipt{Decision: decision}

	if !liked {
		return receipt, nil
	}

	// the match row is written by a trigger on swipes
	var matchID string
	err = s.DB.QueryRowContext(ctx,
		`SELECT id FROM matches
		 WHERE is_active AND ((user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1))
		 LIMIT 1`,
		requesterID, targetID,
	).Scan(&matchID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		log.Printf("⚠️ Swipe saved but match lookup failed for %s -> %s: %v", requesterID, targetID, err)
	default:
		receipt.Matched = true
		receipt.MatchID = matchID
	}
	return receipt, nil
}

// DeleteSwipe removes the decision for the pair. Deleting nothing is fine.
func (s *PostgresDiscoverStore) DeleteSwipe(ctx context.Context, requesterID, targetID string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM swipes WHERE user_id = $1 AND target_user_id = $2`,
		requesterID, targetID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete swipe: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Printf("⚠️ No swipe to delete for %s -> %s", requesterID, targetID)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresDiscoverStore) Close() error {
	return s.DB.Close()
}
