package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store tracks a per-user session version. Tokens embed the version they
// were issued against; bumping the version invalidates every outstanding
// token for that user at once (global sign-out).
type Store struct {
	client *redis.Client
}

func NewStore(addr, password string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func key(organization, username string) string {
	return fmt.Sprintf("session:version:%s:%s", organization, username)
}

// Version returns the user's current session version. Users that were
// never bumped are at version 0.
func (s *Store) Version(ctx context.Context, organization, username string) (int64, error) {
	v, err := s.client.Get(ctx, key(organization, username)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get session version: %w", err)
	}
	return v, nil
}

// Invalidate bumps the user's session version, killing all tokens issued
// before the bump.
func (s *Store) Invalidate(ctx context.Context, organization, username string) error {
	if err := s.client.Incr(ctx, key(organization, username)).Err(); err != nil {
		return fmt.Errorf("bump session version: %w", err)
	}
	return nil
}
