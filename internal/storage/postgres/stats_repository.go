package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) GetQueue(ctx context.Context, queueID string) (domain.Queue, error) {
	const query = `
SELECT id, name, description, is_active, max_concurrent_items, created_at
FROM queues
WHERE id = $1`

	var q domain.Queue
	err := r.pool.QueryRow(ctx, query, queueID).
		Scan(&q.ID, &q.Name, &q.Description, &q.IsActive, &q.MaxConcurrentItems, &q.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Queue{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Queue{}, domain.ErrQueueNotFound
		}
		return domain.Queue{}, fmt.Errorf("get queue: %w", err)
	}
	return q, nil
}

func (r *StatsRepository) CountTicketsByStatus(ctx context.Context, queueID string) (map[domain.TicketStatus]int, error) {
	const query = `
SELECT status, COUNT(*)
FROM tickets
WHERE queue_id = $1
GROUP BY status`

	rows, err := r.pool.Query(ctx, query, queueID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var status domain.TicketStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan ticket count: %w", err)
		}
		counts[status] = n
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate ticket counts: %w", rows.Err())
	}
	return counts, nil
}

func (r *StatsRepository) RecentServiceDurations(ctx context.Context, queueID string, limit int) ([]time.Duration, error) {
	const query = `
SELECT started_at, completed_at
FROM tickets
WHERE queue_id = $1
  AND status = 'completed'
  AND started_at IS NOT NULL
  AND completed_at IS NOT NULL
ORDER BY completed_at DESC
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, queueID, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("recent service durations: %w", err)
	}
	defer rows.Close()

	var durations []time.Duration
	for rows.Next() {
		var startedAt, completedAt time.Time
		if err := rows.Scan(&startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan service duration: %w", err)
		}
		durations = append(durations, completedAt.Sub(startedAt))
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate service durations: %w", rows.Err())
	}
	return durations, nil
}
