package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cabino/pkg/redis"
)

const stateTTL = 24 * time.Hour

// JSONStore is implemented by pkg/redis.Client.
type JSONStore interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var _ JSONStore = (*redis.Client)(nil)

type Storage struct {
	store JSONStore
}

func New(store JSONStore) *Storage {
	return &Storage{store: store}
}

func (s *Storage) SetUserDialogState(ctx context.Context, chatID int64, state *UserState) error {
	if err := s.store.SetJSON(ctx, buildStateKey(chatID), state, stateTTL); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// GetUserDialogState returns an empty state for chats seen for the first
// time or whose state expired.
func (s *Storage) GetUserDialogState(ctx context.Context, chatID int64) (*UserState, error) {
	var state UserState
	err := s.store.GetJSON(ctx, buildStateKey(chatID), &state)
	if errors.Is(err, redis.ErrNotFound) {
		return &UserState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (s *Storage) DropUserDialogState(ctx context.Context, chatID int64) error {
	return s.store.Del(ctx, buildStateKey(chatID))
}

func buildStateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}
