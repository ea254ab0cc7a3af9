package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresResultStore is the append-only result log. No UPDATE statement
// exists here on purpose.
type PostgresResultStore struct {
	pool *pgxpool.Pool
}

// NewPostgresResultStore creates a new PostgresResultStore.
func NewPostgresResultStore(pool *pgxpool.Pool) *PostgresResultStore {
	return &PostgresResultStore{pool: pool}
}

// Append inserts one result row.
func (s *PostgresResultStore) Append(ctx context.Context, r *model.TestResult) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO test_results (id, test_id, user_id, score, total)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING submitted_at`,
		r.ID, r.TestID, r.UserID, r.Score, r.Total,
	).Scan(&r.SubmittedAt)
}

// LatestForTest returns the most recent result for (testID, userID).
func (s *PostgresResultStore) LatestForTest(ctx context.Context, testID uuid.UUID, userID string) (*model.TestResult, error) {
	r := &model.TestResult{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, test_id, user_id, score, total, submitted_at
		 FROM test_results
		 WHERE test_id = $1 AND user_id = $2
		 ORDER BY submitted_at DESC
		 LIMIT 1`, testID, userID,
	).Scan(&r.ID, &r.TestID, &r.UserID, &r.Score, &r.Total, &r.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoResult
		}
		return nil, fmt.Errorf("latest result: %w", err)
	}
	return r, nil
}

// ListByUser retrieves all results for a user, newest first.
func (s *PostgresResultStore) ListByUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, test_id, user_id, score, total, submitted_at
		 FROM test_results
		 WHERE user_id = $1
		 ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		var r model.TestResult
		if err := rows.Scan(&r.ID, &r.TestID, &r.UserID, &r.Score, &r.Total, &r.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
