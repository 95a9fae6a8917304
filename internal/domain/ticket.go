package domain

import "time"

type TicketStatus string

const (
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusProcessing TicketStatus = "processing"
	TicketStatusCompleted  TicketStatus = "completed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

var ticketTransitions = map[TicketStatus]map[TicketStatus]bool{
	TicketStatusWaiting: {
		TicketStatusProcessing: true,
		TicketStatusCancelled:  true,
	},
	TicketStatusProcessing: {
		TicketStatusCompleted: true,
		TicketStatusCancelled: true,
	},
}

// CanTransitionTo reports whether a ticket in status s may move to next.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	return ticketTransitions[s][next]
}

// Terminal reports whether no further transitions are permitted.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

// Ticket is one participant's entry in a queue. JoinedAt is set once at
// creation; StartedAt and CompletedAt are set once at the corresponding
// transition and never cleared.
type Ticket struct {
	ID              string
	QueueID         string
	ParticipantID   string
	ParticipantName string
	Status          TicketStatus
	JoinedAt        time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	Note            string
}
