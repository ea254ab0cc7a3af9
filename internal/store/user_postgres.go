package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserStore holds platform accounts.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a new PostgresUserStore.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// GetByEmail retrieves a user by email.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, name, email, batch_id, password_hash, role, created_at
		 FROM users WHERE email = $1`, email))
}

// GetByID retrieves a user by ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, name, email, batch_id, password_hash, role, created_at
		 FROM users WHERE id = $1`, id))
}

// Create inserts a new user.
func (s *PostgresUserStore) Create(ctx context.Context, u *model.User) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, batch_id, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		u.ID, u.Name, u.Email, u.BatchID, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt)
}

func (s *PostgresUserStore) scanOne(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.BatchID, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
