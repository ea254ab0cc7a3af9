package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresLedgerStore is the append-only submission event log.
type PostgresLedgerStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresLedgerStore creates a new PostgresLedgerStore.
func NewPostgresLedgerStore(pool *pgxpool.Pool, log zerolog.Logger) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		pool: pool,
		log:  log.With().Str("component", "ledger_store").Logger(),
	}
}

// Append inserts one ledger event.
func (s *PostgresLedgerStore) Append(ctx context.Context, e *model.SubmissionEvent) error {
	var metadata []byte
	if e.Metadata != nil {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	return s.pool.QueryRow(ctx,
		`INSERT INTO submission_events (id, user_id, type, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING timestamp`,
		e.ID, e.UserID, e.Type, metadata,
	).Scan(&e.Timestamp)
}

// CountsByDay aggregates same-day events for a user over the last `days`
// calendar days. Bucketing happens in Go, in the window's own timezone:
// grouping by day in SQL would split calendar days at the connection
// timezone's midnight instead, miscounting on non-UTC hosts. The window is
// zero-filled so the result always has exactly `days` contiguous entries,
// oldest first.
func (s *PostgresLedgerStore) CountsByDay(ctx context.Context, userID string, days int) ([]DayCount, error) {
	now := time.Now()
	since := dayKey(now).AddDate(0, 0, -(days - 1))

	rows, err := s.pool.Query(ctx,
		`SELECT timestamp
		 FROM submission_events
		 WHERE user_id = $1 AND timestamp >= $2`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("counts by day: %w", err)
	}
	defer rows.Close()

	counts := make(map[time.Time]int)
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			s.log.Warn().Err(err).Msg("Skipping unreadable ledger row")
			continue
		}
		counts[dayKey(ts.In(now.Location()))]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fillDayCounts(counts, days, now), nil
}
