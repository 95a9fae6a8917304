package postgres

import (
	"context"
	"fmt"

	"github.com/MeshanKhosla/convex-queue/internal/app"
	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketColumns = `id, queue_id, participant_id, participant_name, status, joined_at, started_at, completed_at, note`

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LedgerRepository) GetQueue(ctx context.Context, queueID string) (domain.Queue, error) {
	return r.getQueue(ctx, queueID, false)
}

// GetQueueForUpdate locks the queue row for the rest of the transaction,
// serializing concurrent admissions into the same queue.
func (r *LedgerRepository) GetQueueForUpdate(ctx context.Context, queueID string) (domain.Queue, error) {
	return r.getQueue(ctx, queueID, true)
}

func (r *LedgerRepository) getQueue(ctx context.Context, queueID string, forUpdate bool) (domain.Queue, error) {
	query := `
SELECT id, name, description, is_active, max_concurrent_items, created_at
FROM queues
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	var q domain.Queue
	err := r.queryRow(ctx, query, queueID).
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

func (r *LedgerRepository) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	const query = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE id = $1`

	ticket, err := scanTicket(r.queryRow(ctx, query, ticketID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (r *LedgerRepository) InsertTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, queue_id, participant_id, participant_name, status, joined_at, note)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		ticket.ID,
		ticket.QueueID,
		ticket.ParticipantID,
		ticket.ParticipantName,
		ticket.Status,
		ticket.JoinedAt,
		ticket.Note,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// UpdateTicketStatus is the ledger's compare-and-set: the row changes
// only while its status still equals expected. Timestamps are written
// once and kept thereafter.
func (r *LedgerRepository) UpdateTicketStatus(ctx context.Context, ticketID string, expected domain.TicketStatus, update app.TicketStatusUpdate) (bool, error) {
	const stmt = `
UPDATE tickets
SET status = $3,
    started_at = COALESCE($4, started_at),
    completed_at = COALESCE($5, completed_at)
WHERE id = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, ticketID, expected, update.Status, update.StartedAt, update.CompletedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("update ticket status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LedgerRepository) ListTicketsByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error) {
	const query = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE queue_id = $1
ORDER BY joined_at ASC, id ASC`

	return r.listTickets(ctx, query, queueID)
}

func (r *LedgerRepository) ListActiveTicketsByParticipant(ctx context.Context, participantID string) ([]domain.Ticket, error) {
	const query = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE participant_id = $1 AND status IN ('waiting', 'processing')
ORDER BY joined_at ASC, id ASC`

	return r.listTickets(ctx, query, participantID)
}

func (r *LedgerRepository) CountProcessingByQueue(ctx context.Context) (map[string]int, error) {
	const query = `
SELECT queue_id, COUNT(*)
FROM tickets
WHERE status = 'processing'
GROUP BY queue_id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count processing: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var queueID string
		var n int
		if err := rows.Scan(&queueID, &n); err != nil {
			return nil, fmt.Errorf("scan processing count: %w", err)
		}
		counts[queueID] = n
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate processing counts: %w", rows.Err())
	}
	return counts, nil
}

func (r *LedgerRepository) listTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tickets: %w", rows.Err())
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID,
		&t.QueueID,
		&t.ParticipantID,
		&t.ParticipantName,
		&t.Status,
		&t.JoinedAt,
		&t.StartedAt,
		&t.CompletedAt,
		&t.Note,
	)
	if err != nil {
		return domain.Ticket{}, err
	}
	return t, nil
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
