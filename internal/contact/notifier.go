// AngelaMos | 2026
// notifier.go

package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Notification is what the mail worker consumes to tell an owner that a
// finder got in touch.
type Notification struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Message     string    `json:"message"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Notifier interface {
	Enqueue(ctx context.Context, n Notification) error
}

type RedisNotifier struct {
	client   redis.UniversalClient
	queueKey string
}

func NewRedisNotifier(client redis.UniversalClient, queueKey string) *RedisNotifier {
	return &RedisNotifier{client: client, queueKey: queueKey}
}

func (n *RedisNotifier) Enqueue(ctx context.Context, note Notification) error {
	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if err := n.client.LPush(ctx, n.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	return nil
}

type MemoryNotifier struct {
	mu    sync.Mutex
	queue []Notification
	Err   error
}

func (m *MemoryNotifier) Enqueue(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.queue = append(m.queue, n)
	return nil
}

func (m *MemoryNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Notification(nil), m.queue...)
}
