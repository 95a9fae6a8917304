package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

// TicketLedger is the minimal interface needed for ticket lifecycle
// transitions.
type TicketLedger interface {
	StartProcessing(ctx context.Context, ticketID string) (domain.Ticket, error)
	CompleteItem(ctx context.Context, ticketID string) (domain.Ticket, error)
	CancelItem(ctx context.Context, ticketID, requesterID string) (domain.Ticket, error)
}

// HandleTicketActions returns an HTTP handler for the per-ticket routes:
// POST /tickets/{id}/start, /tickets/{id}/complete and
// /tickets/{id}/cancel.
func HandleTicketActions(svc TicketLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, action, ok := parseTicketPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var (
			ticket domain.Ticket
			err    error
		)
		switch action {
		case "start":
			ticket, err = svc.StartProcessing(r.Context(), ticketID)
		case "complete":
			ticket, err = svc.CompleteItem(r.Context(), ticketID)
		case "cancel":
			var req cancelTicketRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if decErr := dec.Decode(&req); decErr != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			ticket, err = svc.CancelItem(r.Context(), ticketID, req.RequesterID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newTicketResponse(ticket))
	}
}

type cancelTicketRequest struct {
	RequesterID string `json:"requester_id"`
}

func parseTicketPath(path string) (ticketID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "tickets" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
