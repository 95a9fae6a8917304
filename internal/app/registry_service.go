package app

import (
	"context"
	"strings"

	"github.com/MeshanKhosla/convex-queue/internal/clock"
	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/google/uuid"
)

type RegistryRepository interface {
	CreateQueue(ctx context.Context, queue domain.Queue) error
	GetQueue(ctx context.Context, queueID string) (domain.Queue, error)
	ListActiveQueues(ctx context.Context) ([]domain.Queue, error)
	SetQueueActive(ctx context.Context, queueID string, active bool) error
}

// RegistryService owns queue definitions and the active flag.
type RegistryService struct {
	repo  RegistryRepository
	clock clock.Clock
}

func NewRegistryService(repo RegistryRepository, clk clock.Clock) *RegistryService {
	return &RegistryService{
		repo:  repo,
		clock: clk,
	}
}

type CreateQueueInput struct {
	Name        string
	Description string
	// MaxConcurrentItems, when set, must be positive. Nil leaves the
	// queue unbounded.
	MaxConcurrentItems *int
}

func (s *RegistryService) CreateQueue(ctx context.Context, in CreateQueueInput) (domain.Queue, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Queue{}, domain.ErrQueueNameRequired
	}

	limit := 0
	if in.MaxConcurrentItems != nil {
		if *in.MaxConcurrentItems < 1 {
			return domain.Queue{}, domain.ErrInvalidCapacity
		}
		limit = *in.MaxConcurrentItems
	}

	queue := domain.Queue{
		ID:                 uuid.NewString(),
		Name:               name,
		Description:        strings.TrimSpace(in.Description),
		IsActive:           true,
		MaxConcurrentItems: limit,
		CreatedAt:          s.clock.Now(),
	}

	if err := s.repo.CreateQueue(ctx, queue); err != nil {
		return domain.Queue{}, err
	}
	return queue, nil
}

func (s *RegistryService) GetQueue(ctx context.Context, queueID string) (domain.Queue, error) {
	if queueID == "" {
		return domain.Queue{}, domain.ErrInvalidID
	}
	return s.repo.GetQueue(ctx, queueID)
}

// ListActiveQueues returns active queues in creation order.
func (s *RegistryService) ListActiveQueues(ctx context.Context) ([]domain.Queue, error) {
	return s.repo.ListActiveQueues(ctx)
}

// DeactivateQueue flips the queue inactive. Deactivating an already
// inactive queue succeeds and changes nothing.
func (s *RegistryService) DeactivateQueue(ctx context.Context, queueID string) error {
	if queueID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.SetQueueActive(ctx, queueID, false)
}
