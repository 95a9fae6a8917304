package app

import (
	"context"
	"time"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

const (
	// serviceTimeWindow is how many recent completions feed the moving
	// average of service time.
	serviceTimeWindow = 50
	// serviceTimeMinSamples is the floor below which the average is not
	// considered meaningful.
	serviceTimeMinSamples = 3
	// defaultServiceTime estimates service time when a queue has too few
	// completions to average.
	defaultServiceTime = 5 * time.Minute
)

type StatsRepository interface {
	GetQueue(ctx context.Context, queueID string) (domain.Queue, error)
	CountTicketsByStatus(ctx context.Context, queueID string) (map[domain.TicketStatus]int, error)
	// RecentServiceDurations returns completed-minus-started durations
	// for the queue's most recent completions, newest first, capped at
	// limit.
	RecentServiceDurations(ctx context.Context, queueID string, limit int) ([]time.Duration, error)
}

// StatsService derives read-only views from ledger state. It never
// mutates tickets or queues.
type StatsService struct {
	repo StatsRepository
}

func NewStatsService(repo StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

// GetQueueStats tallies the queue's tickets by status and estimates the
// wait for a new arrival as waiting count times the average service
// time over the queue's recent completions.
func (s *StatsService) GetQueueStats(ctx context.Context, queueID string) (domain.QueueStats, error) {
	if queueID == "" {
		return domain.QueueStats{}, domain.ErrInvalidID
	}

	if _, err := s.repo.GetQueue(ctx, queueID); err != nil {
		return domain.QueueStats{}, err
	}

	counts, err := s.repo.CountTicketsByStatus(ctx, queueID)
	if err != nil {
		return domain.QueueStats{}, err
	}

	stats := domain.QueueStats{
		Waiting:    counts[domain.TicketStatusWaiting],
		Processing: counts[domain.TicketStatusProcessing],
		Completed:  counts[domain.TicketStatusCompleted],
		Cancelled:  counts[domain.TicketStatusCancelled],
	}
	stats.Total = stats.Waiting + stats.Processing + stats.Completed + stats.Cancelled

	avg, err := s.averageServiceTime(ctx, queueID)
	if err != nil {
		return domain.QueueStats{}, err
	}
	stats.EstimatedWaitSeconds = int64(stats.Waiting) * int64(avg/time.Second)

	return stats, nil
}

func (s *StatsService) averageServiceTime(ctx context.Context, queueID string) (time.Duration, error) {
	durations, err := s.repo.RecentServiceDurations(ctx, queueID, serviceTimeWindow)
	if err != nil {
		return 0, err
	}
	if len(durations) < serviceTimeMinSamples {
		return defaultServiceTime, nil
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations)), nil
}
