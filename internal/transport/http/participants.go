package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

// ParticipantLedger is the minimal interface needed to list a
// participant's active tickets.
type ParticipantLedger interface {
	ListParticipantItems(ctx context.Context, participantID string) ([]domain.Ticket, error)
}

// HandleParticipantTickets returns an HTTP handler for
// GET /participants/{id}/tickets.
func HandleParticipantTickets(svc ParticipantLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participantID, ok := parseParticipantTicketsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		tickets, err := svc.ListParticipantItems(r.Context(), participantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]ticketResponse, 0, len(tickets))
		for _, t := range tickets {
			resp = append(resp, newTicketResponse(t))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseParticipantTicketsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "participants" || parts[2] != "tickets" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
