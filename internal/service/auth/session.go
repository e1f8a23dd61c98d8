package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionKey is where a session lives in Redis. The value is the login id;
// the key's TTL is the session's remaining life.
func SessionKey(sessionID uuid.UUID) string { return "session:" + sessionID.String() }

type sessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s sessions) open(ctx context.Context, identityID uuid.UUID) (uuid.UUID, error) {
	id := uuid.Must(uuid.NewV7())
	if err := s.rdb.Set(ctx, SessionKey(id), identityID.String(), s.ttl).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// check returns ErrSessionNotFound for a missing or expired session.
func (s sessions) check(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Exists(ctx, SessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("look up session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// touch slides the session's expiry forward; false means it is gone.
func (s sessions) touch(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.rdb.Expire(ctx, SessionKey(id), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return ok, err
}

func (s sessions) close(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.rdb.Del(ctx, SessionKey(id)).Result()
	return n > 0, err
}
