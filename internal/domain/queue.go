package domain

import "time"

// Queue is a named admission channel that participants join and wait in.
type Queue struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	// MaxConcurrentItems bounds how many tickets may be in the
	// processing state at once. Zero means unbounded.
	MaxConcurrentItems int
	CreatedAt          time.Time
}
