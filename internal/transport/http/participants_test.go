package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

func TestHandleParticipantTickets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		tickets        []domain.Ticket
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:   "success",
			method: http.MethodGet,
			path:   "/participants/p1/tickets",
			tickets: []domain.Ticket{
				{ID: "t1", ParticipantID: "p1", Status: domain.TicketStatusWaiting},
				{ID: "t2", ParticipantID: "p1", Status: domain.TicketStatusProcessing},
			},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"id":"t2"`,
		},
		{
			name:           "empty result is an array",
			method:         http.MethodGet,
			path:           "/participants/p1/tickets",
			expectedStatus: http.StatusOK,
			expectedSubstr: `[]`,
		},
		{
			name:           "invalid id",
			method:         http.MethodGet,
			path:           "/participants/p1/tickets",
			serviceErr:     domain.ErrInvalidID,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong method",
			method:         http.MethodPost,
			path:           "/participants/p1/tickets",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "bad path",
			method:         http.MethodGet,
			path:           "/participants/p1/queues",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "internal error",
			method:         http.MethodGet,
			path:           "/participants/p1/tickets",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubParticipantLedger{
				tickets: tt.tickets,
				err:     tt.serviceErr,
			}
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			HandleParticipantTickets(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

type stubParticipantLedger struct {
	tickets []domain.Ticket
	err     error
}

func (s *stubParticipantLedger) ListParticipantItems(_ context.Context, _ string) ([]domain.Ticket, error) {
	return s.tickets, s.err
}
