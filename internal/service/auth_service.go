package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edustack/assess-backend/internal/config"
	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another login session is already active")
)

// Claims extends JWT standard claims with the identity fields the session
// engine consumes: user ID and batch (cohort) ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string         `json:"user_id"`
	BatchID string         `json:"batch_id,omitempty"`
	Role    model.UserRole `json:"role"`
}

// AuthService handles authentication, JWT issuing, and login sessions.
type AuthService struct {
	cfg   *config.Config
	users store.UserStore
	rdb   *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users store.UserStore, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, users: users, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// Login verifies credentials and issues a JWT. Students get a single-device
// login session registered in Redis; a second login is rejected until the
// first expires or logs out.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if user.Role == model.RoleStudent {
		sessionKey := config.CacheKey.UserSessionKey(user.ID)
		existing, err := s.rdb.Get(ctx, sessionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return "", nil, fmt.Errorf("check login session: %w", err)
		}
		if existing != "" {
			return "", nil, ErrSessionAlreadyActive
		}
	}

	token, jti, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	if user.Role == model.RoleStudent {
		sessionKey := config.CacheKey.UserSessionKey(user.ID)
		if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
			return "", nil, fmt.Errorf("store login session: %w", err)
		}
	}

	return token, user, nil
}

// Logout removes the user's login session so a new device can log in.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID)).Err()
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ValidateLoginSession checks the token's JTI against the registered login
// session in Redis. A mismatch means the session was reset or superseded.
func (s *AuthService) ValidateLoginSession(ctx context.Context, userID, jti string) error {
	current, err := s.rdb.Get(ctx, config.CacheKey.UserSessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active login session")
		}
		return fmt.Errorf("check login session: %w", err)
	}
	if current != jti {
		return errors.New("login session superseded")
	}
	return nil
}

func (s *AuthService) generateToken(user *model.User) (signed, jti string, err error) {
	jti = uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:  user.ID,
		BatchID: user.BatchID,
		Role:    user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}
