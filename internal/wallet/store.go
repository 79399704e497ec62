package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey    = "wallets:index"
	valuePrefix = "wallets:"
)

var userIDRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

// Store persists custody records in Redis.
type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client}, nil
}

func ValidateUserID(userID string) error {
	if !userIDRe.MatchString(userID) {
		return fmt.Errorf("invalid user id")
	}
	return nil
}

// FindByUserID returns the custody record for a user, or ErrNotFound.
func (s *Store) FindByUserID(ctx context.Context, userID string) (*Record, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, recordKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal wallet: %w", err)
	}
	return &rec, nil
}

// Save writes a custody record, stamping UpdatedAt.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if err := ValidateUserID(rec.UserID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(rec.UserID), b, 0)
	pipe.SAdd(ctx, indexKey, rec.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}

	return nil
}

// Delete removes a custody record. Missing records are not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, recordKey(userID))
	pipe.SRem(ctx, indexKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

// List returns all known user ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return ids, nil
}

func recordKey(userID string) string {
	return valuePrefix + userID
}
