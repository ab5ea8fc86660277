package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/constants"
	"github.com/rescuelink/dispatch/internal/pkg/database"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
)

// MemoryNotificationQueue is the single-instance offer mailbox. Drain swaps
// the whole slice out under the lock, so each entry is observed exactly once.
type MemoryNotificationQueue struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]models.NotificationEntry
}

// NewMemoryNotificationQueue creates an in-memory notification queue
func NewMemoryNotificationQueue() *MemoryNotificationQueue {
	return &MemoryNotificationQueue{
		entries: make(map[uuid.UUID][]models.NotificationEntry),
	}
}

// Push appends an offer to the responder's mailbox
func (q *MemoryNotificationQueue) Push(ctx context.Context, responderID uuid.UUID, entry models.NotificationEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[responderID] = append(q.entries[responderID], entry)
	return nil
}

// Drain removes and returns all pending offers for the responder
func (q *MemoryNotificationQueue) Drain(ctx context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entries := q.entries[responderID]
	delete(q.entries, responderID)
	return entries, nil
}

// Clear discards all pending offers for the responder
func (q *MemoryNotificationQueue) Clear(ctx context.Context, responderID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, responderID)
	return nil
}

// RedisNotificationQueue is the multi-instance offer mailbox backed by a
// Redis list per responder. Drain uses LRANGE+DEL inside MULTI/EXEC so two
// concurrent drains never return the same entry.
type RedisNotificationQueue struct {
	redisClient *database.RedisClient
}

// NewRedisNotificationQueue creates a Redis-backed notification queue
func NewRedisNotificationQueue(redisClient *database.RedisClient) *RedisNotificationQueue {
	return &RedisNotificationQueue{redisClient: redisClient}
}

// Push appends an offer to the responder's mailbox list
func (q *RedisNotificationQueue) Push(ctx context.Context, responderID uuid.UUID, entry models.NotificationEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal notification entry: %w", err)
	}

	key := fmt.Sprintf(constants.KeyNotifyQueue, responderID.String())
	if err := q.redisClient.RPush(ctx, key, data); err != nil {
		return fmt.Errorf("failed to push notification entry: %w", err)
	}
	return nil
}

// Drain atomically removes and returns all pending offers for the responder
func (q *RedisNotificationQueue) Drain(ctx context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error) {
	key := fmt.Sprintf(constants.KeyNotifyQueue, responderID.String())
	raw, err := q.redisClient.DrainList(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to drain notification queue: %w", err)
	}

	entries := make([]models.NotificationEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.NotificationEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// A malformed entry is dropped rather than blocking the mailbox
			logger.Warn("Dropping malformed notification entry",
				logger.String("responder_id", responderID.String()),
				logger.Err(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear discards all pending offers for the responder
func (q *RedisNotificationQueue) Clear(ctx context.Context, responderID uuid.UUID) error {
	key := fmt.Sprintf(constants.KeyNotifyQueue, responderID.String())
	if err := q.redisClient.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to clear notification queue: %w", err)
	}
	return nil
}
