// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/metrics"
)

const StatusSubmitted = "submitted"

type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (string, bool)
}

type Submission struct {
	Token   string
	Message string
	ReplyTo string
}

type Receipt struct {
	Status string `json:"status"`
}

type Service struct {
	resolver         TokenResolver
	notifier         Notifier
	metrics          *metrics.Metrics
	logger           *slog.Logger
	maxMessageLength int
	now              func() time.Time
}

func NewService(
	resolver TokenResolver,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	maxMessageLength int,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		resolver:         resolver,
		notifier:         notifier,
		metrics:          m,
		logger:           logger,
		maxMessageLength: maxMessageLength,
		now:              time.Now,
	}
}

// Submit accepts a finder's message. The receipt is the same whether or
// not the token reaches an owner; only a malformed message is rejected,
// and that check never looks at the token.
func (s *Service) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	message := strings.TrimSpace(sub.Message)
	if message == "" || utf8.RuneCountInString(message) > s.maxMessageLength {
		return Receipt{}, fmt.Errorf("submit contact: message length: %w", core.ErrInvalidInput)
	}

	receipt := Receipt{Status: StatusSubmitted}

	ownerID, ok := s.resolver.ResolveToken(ctx, sub.Token)
	if !ok {
		s.metrics.IncrementContact(false)
		return receipt, nil
	}

	note := Notification{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Message:     message,
		ReplyTo:     strings.TrimSpace(sub.ReplyTo),
		SubmittedAt: s.now().UTC(),
	}

	if err := s.notifier.Enqueue(ctx, note); err != nil {
		s.logger.ErrorContext(ctx, "contact notification dropped",
			"error", err,
			"notification_id", note.ID,
		)
		s.metrics.IncrementContact(false)
		return receipt, nil
	}

	s.metrics.IncrementContact(true)
	return receipt, nil
}
