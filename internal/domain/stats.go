package domain

// QueueStats is a point-in-time tally of one queue's tickets. Total is
// always the sum of the four status counts.
type QueueStats struct {
	Total                int
	Waiting              int
	Processing           int
	Completed            int
	Cancelled            int
	EstimatedWaitSeconds int64
}
