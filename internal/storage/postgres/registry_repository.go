package postgres

import (
	"context"
	"fmt"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistryRepository struct {
	pool *pgxpool.Pool
}

func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) CreateQueue(ctx context.Context, queue domain.Queue) error {
	const stmt = `
INSERT INTO queues (id, name, description, is_active, max_concurrent_items, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt,
		queue.ID,
		queue.Name,
		queue.Description,
		queue.IsActive,
		queue.MaxConcurrentItems,
		queue.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create queue: %w", err)
	}
	return nil
}

func (r *RegistryRepository) GetQueue(ctx context.Context, queueID string) (domain.Queue, error) {
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

func (r *RegistryRepository) ListActiveQueues(ctx context.Context) ([]domain.Queue, error) {
	const query = `
SELECT id, name, description, is_active, max_concurrent_items, created_at
FROM queues
WHERE is_active
ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active queues: %w", err)
	}
	defer rows.Close()

	var queues []domain.Queue
	for rows.Next() {
		var q domain.Queue
		if err := rows.Scan(&q.ID, &q.Name, &q.Description, &q.IsActive, &q.MaxConcurrentItems, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan queue: %w", err)
		}
		queues = append(queues, q)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate queues: %w", rows.Err())
	}
	return queues, nil
}

func (r *RegistryRepository) SetQueueActive(ctx context.Context, queueID string, active bool) error {
	const stmt = `UPDATE queues SET is_active = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt, queueID, active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set queue active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQueueNotFound
	}
	return nil
}
