package learner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	selectionKeyPrefix  = "pathways:selected:"
	defaultSelectionTTL = 2 * time.Hour
)

// ErrNoSelection is returned when a session has no selected student.
var ErrNoSelection = errors.New("no student selected")

// SelectionStore remembers which student a UI session is looking at.
type SelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSelectionStore creates a Redis-backed selection store. A zero ttl uses
// the default of two hours.
func NewSelectionStore(client *redis.Client, ttl time.Duration) (*SelectionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = defaultSelectionTTL
	}
	return &SelectionStore{client: client, ttl: ttl}, nil
}

func selectionKey(session string) string {
	return selectionKeyPrefix + session
}

// Select records studentID as the current student for a session.
func (s *SelectionStore) Select(ctx context.Context, session, studentID string) error {
	if session == "" {
		return fmt.Errorf("session is required")
	}
	if studentID == "" {
		return fmt.Errorf("student id is required")
	}
	if err := s.client.Set(ctx, selectionKey(session), studentID, s.ttl).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Selected returns the current student for a session.
func (s *SelectionStore) Selected(ctx context.Context, session string) (string, error) {
	id, err := s.client.Get(ctx, selectionKey(session)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSelection
		}
		return "", fmt.Errorf("load selection: %w", err)
	}
	return id, nil
}

// Clear forgets a session's selection.
func (s *SelectionStore) Clear(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, selectionKey(session)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
