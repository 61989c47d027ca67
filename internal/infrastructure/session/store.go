package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/pkg/logger"
)

const keyPrefix = "session:"

// Store maps opaque session ids to user ids in a shared Redis instance, so
// sessions survive process restarts and are valid across server instances.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewStore connects to Redis and verifies the connection
func NewStore(cfg *config.RedisConfig, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{
		client: client,
		ttl:    ttl,
		log:    logger.Get().WithFields(logger.Component("session-store")),
	}, nil
}

// NewStoreWithClient wraps an existing Redis client (used in tests)
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		log:    logger.Get().WithFields(logger.Component("session-store")),
	}
}

// Create stores a new session for the user and returns its opaque id
func (s *Store) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sessionID, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.log.Debug("Session created",
		logger.UserID(userID.String()),
	)
	return sessionID, nil
}

// Resolve returns the user id for a session id. Unknown and expired
// sessions both resolve to uuid.Nil with a nil error; only infrastructure
// failures are errors.
func (s *Store) Resolve(ctx context.Context, sessionID string) (uuid.UUID, error) {
	if sessionID == "" {
		return uuid.Nil, nil
	}

	val, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		// Corrupt session payload, treat as no identity
		s.log.Warn("Dropping malformed session payload",
			logger.Error(err),
		)
		s.client.Del(ctx, keyPrefix+sessionID)
		return uuid.Nil, nil
	}

	return userID, nil
}

// Destroy removes a session; destroying a missing session is a no-op
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// TTL returns the configured session lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Ping verifies the Redis connection, used by the readiness endpoint
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

// generateSessionID returns a 256-bit random id, base64url encoded
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
