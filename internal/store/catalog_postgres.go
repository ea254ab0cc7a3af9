package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresCatalogStore persists tests with their question sequence as JSONB.
type PostgresCatalogStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresCatalogStore creates a new PostgresCatalogStore.
func NewPostgresCatalogStore(pool *pgxpool.Pool, log zerolog.Logger) *PostgresCatalogStore {
	return &PostgresCatalogStore{
		pool: pool,
		log:  log.With().Str("component", "catalog_store").Logger(),
	}
}

// List returns all tests. Rows whose question payload cannot be decoded are
// logged and skipped so a single corrupt record never fails the caller.
func (s *PostgresCatalogStore) List(ctx context.Context) ([]model.Test, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, batch_id, duration_minutes, questions, status, start_date, end_date, created_at
		 FROM tests
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			s.log.Warn().Err(err).Msg("Skipping unreadable test row")
			continue
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

// GetByID retrieves a single test.
func (s *PostgresCatalogStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, batch_id, duration_minutes, questions, status, start_date, end_date, created_at
		 FROM tests
		 WHERE id = $1`, id)

	t, err := scanTest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return t, nil
}

// Create inserts a new test.
func (s *PostgresCatalogStore) Create(ctx context.Context, t *model.Test) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	return s.pool.QueryRow(ctx,
		`INSERT INTO tests (id, title, batch_id, duration_minutes, questions, status, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		t.ID, t.Title, t.BatchID, t.DurationMinutes, questions, t.Status, t.StartDate, t.EndDate,
	).Scan(&t.CreatedAt)
}

func scanTest(row pgx.Row) (*model.Test, error) {
	t := &model.Test{}
	var questions []byte
	if err := row.Scan(&t.ID, &t.Title, &t.BatchID, &t.DurationMinutes, &questions,
		&t.Status, &t.StartDate, &t.EndDate, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("decode questions for test %s: %w", t.ID, err)
	}
	return t, nil
}
