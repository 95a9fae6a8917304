package domain

import "errors"

var (
	ErrQueueNotFound           = errors.New("queue not found")
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrQueueUnavailable        = errors.New("queue not found or inactive")
	ErrQueueNameRequired       = errors.New("queue name required")
	ErrParticipantNameRequired = errors.New("participant name required")
	ErrInvalidCapacity         = errors.New("invalid capacity")
	ErrInvalidTransition       = errors.New("invalid ticket transition")
	ErrCapacityExceeded        = errors.New("queue capacity exceeded")
	ErrNotAuthorized           = errors.New("not authorized to modify this ticket")
	ErrAlreadyTerminal         = errors.New("cannot modify a completed ticket")
	ErrInvalidID               = errors.New("invalid id")
)
