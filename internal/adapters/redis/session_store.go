package redis

// Package redis provides Redis-based adapters for the FlowPOS session core.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domain "github.com/flowpos/pos-api/internal/domain/session"
)

// SessionStore persists the single keyed session record for one terminal.
// Only the persisted field partition (domain.PersistedSession) crosses this
// boundary; ephemeral flags and privileged payloads never reach Redis.
type SessionStore struct {
	client     redis.UniversalClient
	terminalID string
	prefix     string
}

// NewSessionStore creates a session store for the given terminal.
func NewSessionStore(client redis.UniversalClient, terminalID string) *SessionStore {
	return &SessionStore{
		client:     client,
		terminalID: terminalID,
		prefix:     "pos:session:",
	}
}

// NewSessionStoreWithPrefix creates a session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, terminalID, prefix string) *SessionStore {
	return &SessionStore{
		client:     client,
		terminalID: terminalID,
		prefix:     prefix,
	}
}

func (s *SessionStore) key() string { return s.prefix + s.terminalID }

func (s *SessionStore) Save(ctx context.Context, rec domain.PersistedSession) error {
	if s.terminalID == "" {
		return errors.New("terminal ID cannot be empty")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	// No TTL: the record lives until logout or an explicit store clear. Actor
	// validity is re-verified on every process start, not by key expiry.
	return s.client.Set(ctx, s.key(), data, 0).Err()
}

func (s *SessionStore) Load(ctx context.Context) (domain.PersistedSession, bool, error) {
	if s.terminalID == "" {
		return domain.PersistedSession{}, false, errors.New("terminal ID cannot be empty")
	}

	data, err := s.client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PersistedSession{}, false, nil
		}
		return domain.PersistedSession{}, false, fmt.Errorf("redis get: %w", err)
	}

	var rec domain.PersistedSession
	if unmarshalErr := json.Unmarshal([]byte(data), &rec); unmarshalErr != nil {
		// A record we cannot read is a record we do not trust.
		return domain.PersistedSession{}, false, fmt.Errorf("unmarshal session record: %w", unmarshalErr)
	}
	return rec, true, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if s.terminalID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key()).Err()
}
