package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MeshanKhosla/convex-queue/internal/admission"
	"github.com/MeshanKhosla/convex-queue/internal/clock"
	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/google/uuid"
)

// TicketStatusUpdate carries the fields written by a status transition.
// Nil timestamps leave the stored values untouched.
type TicketStatusUpdate struct {
	Status      domain.TicketStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
}

type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetQueue(ctx context.Context, queueID string) (domain.Queue, error)
	GetQueueForUpdate(ctx context.Context, queueID string) (domain.Queue, error)
	GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error)
	InsertTicket(ctx context.Context, ticket domain.Ticket) error
	// UpdateTicketStatus applies update only if the ticket's stored
	// status still equals expected, reporting whether a row changed.
	UpdateTicketStatus(ctx context.Context, ticketID string, expected domain.TicketStatus, update TicketStatusUpdate) (bool, error)
	ListTicketsByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error)
	ListActiveTicketsByParticipant(ctx context.Context, participantID string) ([]domain.Ticket, error)
	CountProcessingByQueue(ctx context.Context) (map[string]int, error)
}

// LedgerService owns ticket records and the lifecycle state machine:
// waiting -> processing -> completed, with cancellation allowed from
// waiting and processing. Every transition is a compare-and-set on the
// expected prior status; a lost race surfaces as ErrInvalidTransition
// and the caller decides whether to retry.
type LedgerService struct {
	repo      LedgerRepository
	admission *admission.Controller
	clock     clock.Clock
}

func NewLedgerService(repo LedgerRepository, ctrl *admission.Controller, clk clock.Clock) *LedgerService {
	return &LedgerService{
		repo:      repo,
		admission: ctrl,
		clock:     clk,
	}
}

type JoinQueueInput struct {
	QueueID         string
	ParticipantID   string
	ParticipantName string
	Note            string
}

// JoinQueue inserts a new waiting ticket. Capacity is not checked here;
// it only gates admission into processing.
func (s *LedgerService) JoinQueue(ctx context.Context, in JoinQueueInput) (domain.Ticket, error) {
	name := strings.TrimSpace(in.ParticipantName)
	if name == "" {
		return domain.Ticket{}, domain.ErrParticipantNameRequired
	}

	queue, err := s.repo.GetQueue(ctx, in.QueueID)
	if err != nil {
		if errors.Is(err, domain.ErrQueueNotFound) {
			return domain.Ticket{}, domain.ErrQueueUnavailable
		}
		return domain.Ticket{}, err
	}
	if !queue.IsActive {
		return domain.Ticket{}, domain.ErrQueueUnavailable
	}

	ticket := domain.Ticket{
		ID:              uuid.NewString(),
		QueueID:         queue.ID,
		ParticipantID:   in.ParticipantID,
		ParticipantName: name,
		Status:          domain.TicketStatusWaiting,
		JoinedAt:        s.clock.Now(),
		Note:            strings.TrimSpace(in.Note),
	}

	if err := s.repo.InsertTicket(ctx, ticket); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

// StartProcessing admits a waiting ticket into a processing slot. The
// capacity check and the status write happen inside one repository
// transaction, with the queue row locked so that two starts racing for
// the last slot serialize; the loser sees ErrCapacityExceeded and the
// ticket stays waiting. Waiting tickets may be started in any order.
func (s *LedgerService) StartProcessing(ctx context.Context, ticketID string) (domain.Ticket, error) {
	if ticketID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var (
		result   domain.Ticket
		admitted bool
		queueID  string
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusWaiting {
			return domain.ErrInvalidTransition
		}

		queue, err := s.repo.GetQueueForUpdate(txCtx, ticket.QueueID)
		if err != nil {
			return err
		}

		if !s.admission.TryAdmit(queue.ID, queue.MaxConcurrentItems) {
			return domain.ErrCapacityExceeded
		}
		admitted = true
		queueID = queue.ID

		updated, err := s.repo.UpdateTicketStatus(txCtx, ticketID, domain.TicketStatusWaiting, TicketStatusUpdate{
			Status:    domain.TicketStatusProcessing,
			StartedAt: &now,
		})
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrInvalidTransition
		}

		result = ticket
		result.Status = domain.TicketStatusProcessing
		result.StartedAt = &now
		return nil
	})
	if err != nil {
		// A slot reserved in the cache must not outlive a transaction
		// that did not commit.
		if admitted {
			s.admission.Release(queueID)
		}
		return domain.Ticket{}, err
	}
	return result, nil
}

// CompleteItem moves a processing ticket to completed and frees its
// queue's slot.
func (s *LedgerService) CompleteItem(ctx context.Context, ticketID string) (domain.Ticket, error) {
	if ticketID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var (
		result  domain.Ticket
		queueID string
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusProcessing {
			return domain.ErrInvalidTransition
		}

		updated, err := s.repo.UpdateTicketStatus(txCtx, ticketID, domain.TicketStatusProcessing, TicketStatusUpdate{
			Status:      domain.TicketStatusCompleted,
			CompletedAt: &now,
		})
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrInvalidTransition
		}

		queueID = ticket.QueueID
		result = ticket
		result.Status = domain.TicketStatusCompleted
		result.CompletedAt = &now
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.admission.Release(queueID)
	return result, nil
}

// CancelItem cancels a ticket on behalf of requesterID, who must be the
// ticket's participant. Cancelling an already cancelled ticket is a
// no-op success; a completed ticket can no longer be touched. A cancel
// from processing frees the queue's slot.
func (s *LedgerService) CancelItem(ctx context.Context, ticketID, requesterID string) (domain.Ticket, error) {
	if ticketID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}

	var (
		result         domain.Ticket
		fromProcessing bool
		queueID        string
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.ParticipantID != requesterID {
			return domain.ErrNotAuthorized
		}

		switch ticket.Status {
		case domain.TicketStatusCompleted:
			return domain.ErrAlreadyTerminal
		case domain.TicketStatusCancelled:
			result = ticket
			return nil
		}

		updated, err := s.repo.UpdateTicketStatus(txCtx, ticketID, ticket.Status, TicketStatusUpdate{
			Status: domain.TicketStatusCancelled,
		})
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrInvalidTransition
		}

		fromProcessing = ticket.Status == domain.TicketStatusProcessing
		queueID = ticket.QueueID
		result = ticket
		result.Status = domain.TicketStatusCancelled
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	if fromProcessing {
		s.admission.Release(queueID)
	}
	return result, nil
}

// QueueItems is a queue together with its tickets in arrival order.
type QueueItems struct {
	Queue   domain.Queue
	Tickets []domain.Ticket
}

// ListQueueItems returns the queue and all of its tickets ordered by
// ascending JoinedAt, the order callers are expected to present waiting
// participants in.
func (s *LedgerService) ListQueueItems(ctx context.Context, queueID string) (QueueItems, error) {
	if queueID == "" {
		return QueueItems{}, domain.ErrInvalidID
	}

	queue, err := s.repo.GetQueue(ctx, queueID)
	if err != nil {
		return QueueItems{}, err
	}
	tickets, err := s.repo.ListTicketsByQueue(ctx, queueID)
	if err != nil {
		return QueueItems{}, err
	}
	return QueueItems{Queue: queue, Tickets: tickets}, nil
}

// ListParticipantItems returns the participant's non-terminal tickets
// across all queues.
func (s *LedgerService) ListParticipantItems(ctx context.Context, participantID string) ([]domain.Ticket, error) {
	return s.repo.ListActiveTicketsByParticipant(ctx, participantID)
}

// RebuildAdmission reloads the admission counters from the ledger's
// count of processing tickets per queue. Called once at startup.
func (s *LedgerService) RebuildAdmission(ctx context.Context) error {
	counts, err := s.repo.CountProcessingByQueue(ctx)
	if err != nil {
		return err
	}
	s.admission.Rebuild(counts)
	return nil
}
