package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MeshanKhosla/convex-queue/internal/app"
	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

// QueueRegistry is the minimal interface needed for queue creation,
// listing, and deactivation.
type QueueRegistry interface {
	CreateQueue(ctx context.Context, in app.CreateQueueInput) (domain.Queue, error)
	ListActiveQueues(ctx context.Context) ([]domain.Queue, error)
	DeactivateQueue(ctx context.Context, queueID string) error
}

// QueueLedger is the minimal interface needed to join a queue and read
// its tickets.
type QueueLedger interface {
	JoinQueue(ctx context.Context, in app.JoinQueueInput) (domain.Ticket, error)
	ListQueueItems(ctx context.Context, queueID string) (app.QueueItems, error)
}

// QueueStatsProvider is the minimal interface needed for the stats
// endpoint.
type QueueStatsProvider interface {
	GetQueueStats(ctx context.Context, queueID string) (domain.QueueStats, error)
}

// HandleQueues returns an HTTP handler for creating and listing queues.
func HandleQueues(svc QueueRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			queues, err := svc.ListActiveQueues(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]queueResponse, 0, len(queues))
			for _, q := range queues {
				resp = append(resp, newQueueResponse(q))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createQueueRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			queue, err := svc.CreateQueue(r.Context(), app.CreateQueueInput{
				Name:               req.Name,
				Description:        req.Description,
				MaxConcurrentItems: req.MaxConcurrentItems,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(newQueueResponse(queue))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleQueueActions returns an HTTP handler for the per-queue routes:
// GET /queues/{id}, GET /queues/{id}/stats, POST /queues/{id}/join and
// POST /queues/{id}/deactivate.
func HandleQueueActions(registry QueueRegistry, ledger QueueLedger, stats QueueStatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queueID, action, ok := parseQueuePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			items, err := ledger.ListQueueItems(r.Context(), queueID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			tickets := make([]ticketResponse, 0, len(items.Tickets))
			for _, t := range items.Tickets {
				tickets = append(tickets, newTicketResponse(t))
			}
			resp := queueItemsResponse{
				Queue:   newQueueResponse(items.Queue),
				Tickets: tickets,
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case "stats":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			st, err := stats.GetQueueStats(r.Context(), queueID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := statsResponse{
				QueueID:              queueID,
				Total:                st.Total,
				Waiting:              st.Waiting,
				Processing:           st.Processing,
				Completed:            st.Completed,
				Cancelled:            st.Cancelled,
				EstimatedWaitSeconds: st.EstimatedWaitSeconds,
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case "join":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			var req joinQueueRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			ticket, err := ledger.JoinQueue(r.Context(), app.JoinQueueInput{
				QueueID:         queueID,
				ParticipantID:   req.ParticipantID,
				ParticipantName: req.ParticipantName,
				Note:            req.Note,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(newTicketResponse(ticket))
			return
		case "deactivate":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			if err := registry.DeactivateQueue(r.Context(), queueID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
	}
}

type createQueueRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	MaxConcurrentItems *int   `json:"max_concurrent_items,omitempty"`
}

type queueResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	IsActive           bool      `json:"is_active"`
	MaxConcurrentItems int       `json:"max_concurrent_items"`
	CreatedAt          time.Time `json:"created_at"`
}

func newQueueResponse(q domain.Queue) queueResponse {
	return queueResponse{
		ID:                 q.ID,
		Name:               q.Name,
		Description:        q.Description,
		IsActive:           q.IsActive,
		MaxConcurrentItems: q.MaxConcurrentItems,
		CreatedAt:          q.CreatedAt,
	}
}

type joinQueueRequest struct {
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	Note            string `json:"note,omitempty"`
}

type ticketResponse struct {
	ID              string     `json:"id"`
	QueueID         string     `json:"queue_id"`
	ParticipantID   string     `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	Status          string     `json:"status"`
	JoinedAt        time.Time  `json:"joined_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Note            string     `json:"note,omitempty"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:              t.ID,
		QueueID:         t.QueueID,
		ParticipantID:   t.ParticipantID,
		ParticipantName: t.ParticipantName,
		Status:          string(t.Status),
		JoinedAt:        t.JoinedAt,
		StartedAt:       t.StartedAt,
		CompletedAt:     t.CompletedAt,
		Note:            t.Note,
	}
}

type queueItemsResponse struct {
	Queue   queueResponse    `json:"queue"`
	Tickets []ticketResponse `json:"tickets"`
}

type statsResponse struct {
	QueueID              string `json:"queue_id"`
	Total                int    `json:"total"`
	Waiting              int    `json:"waiting"`
	Processing           int    `json:"processing"`
	Completed            int    `json:"completed"`
	Cancelled            int    `json:"cancelled"`
	EstimatedWaitSeconds int64  `json:"estimated_wait_seconds"`
}

func parseQueuePath(path string) (queueID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", false
	}
	if parts[0] != "queues" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	if parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
