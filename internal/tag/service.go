// AngelaMos | 2026
// service.go

package tag

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/identifier"
	"github.com/carterperez-dev/tagback/internal/metrics"
)

// maxWriteAttempts bounds how often Activate retries after losing an
// insert race. Each retry runs a fresh allocation.
const maxWriteAttempts = 5

type KeyspaceStats struct {
	Allocated   int64   `json:"allocated"`
	Capacity    int64   `json:"capacity"`
	Remaining   int64   `json:"remaining"`
	Utilization float64 `json:"utilization"`
}

type Service struct {
	repo      Repository
	tx        TxRunner
	allocator *Allocator
	metrics   *metrics.Metrics
}

func NewService(
	repo Repository,
	tx TxRunner,
	allocator *Allocator,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:      repo,
		tx:        tx,
		allocator: allocator,
		metrics:   m,
	}
}

// Activate gives ownerID an active record. An owner who already has one
// gets it back reactivated with the same identifier and token; otherwise a
// fresh pair is allocated and stored. created reports which happened.
func (s *Service) Activate(
	ctx context.Context,
	ownerID string,
) (*Record, bool, error) {
	if ownerID == "" {
		return nil, false, fmt.Errorf("activate tag: %w", core.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "tag.Activate")
	defer span.End()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var (
			rec     *Record
			created bool
		)

		err := s.tx.RunInTx(ctx, func(repo Repository) error {
			existing, err := repo.GetByOwnerID(ctx, ownerID)
			if err == nil {
				if !existing.IsActive() {
					if err := repo.UpdateStatus(ctx, existing.ID, StatusActive); err != nil {
						return err
					}
					existing.Status = StatusActive
				}
				rec = existing
				return nil
			}
			if !errors.Is(err, core.ErrNotFound) {
				return err
			}

			pair, err := s.allocator.Allocate(ctx, repo)
			if err != nil {
				return err
			}

			fresh := &Record{
				ID:        uuid.New().String(),
				OwnerID:   ownerID,
				DisplayID: pair.DisplayID,
				Token:     pair.Token,
				Status:    StatusActive,
			}
			if err := repo.Create(ctx, fresh); err != nil {
				return err
			}

			rec = fresh
			created = true
			return nil
		})

		if err == nil {
			span.SetAttributes(attribute.Bool("tag.created", created))
			if created {
				s.refreshKeyspace(ctx)
			}
			return rec, created, nil
		}

		if !errors.Is(err, core.ErrDuplicateKey) {
			core.SetSpanError(ctx, err)
			return nil, false, fmt.Errorf("activate tag: %w", err)
		}

		s.metrics.IncrementCollision(metrics.CollisionWrite)
		core.AddSpanEvent(ctx, "write collision",
			attribute.Int("tag.write.attempt", attempt))
	}

	core.SetSpanError(ctx, ErrAllocationExhausted)
	return nil, false, fmt.Errorf(
		"activate tag after %d write attempts: %w",
		maxWriteAttempts,
		ErrAllocationExhausted,
	)
}

func (s *Service) Deactivate(ctx context.Context, ownerID string) (*Record, error) {
	rec, err := s.repo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if rec.Status == StatusInactive {
		return rec, nil
	}

	if err := s.repo.UpdateStatus(ctx, rec.ID, StatusInactive); err != nil {
		return nil, err
	}
	rec.Status = StatusInactive

	return rec, nil
}

func (s *Service) GetForOwner(ctx context.Context, ownerID string) (*Record, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("get tag: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByOwnerID(ctx, ownerID)
}

func (s *Service) KeyspaceStats(ctx context.Context) (KeyspaceStats, error) {
	allocated, err := s.repo.Count(ctx)
	if err != nil {
		return KeyspaceStats{}, err
	}

	capacity := identifier.Capacity()
	s.metrics.SetKeyspace(allocated, capacity)

	return KeyspaceStats{
		Allocated:   allocated,
		Capacity:    capacity,
		Remaining:   max(capacity-allocated, 0),
		Utilization: float64(allocated) / float64(capacity),
	}, nil
}

func (s *Service) refreshKeyspace(ctx context.Context) {
	//nolint:errcheck // gauge refresh is best effort
	_, _ = s.KeyspaceStats(ctx)
}
