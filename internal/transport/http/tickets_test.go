package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

func TestHandleTicketActions_Start(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"processing"`,
		},
		{
			name:           "ticket not found",
			serviceErr:     domain.ErrTicketNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid transition",
			serviceErr:     domain.ErrInvalidTransition,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "capacity exceeded",
			serviceErr:     domain.ErrCapacityExceeded,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "internal error",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubTicketLedger{
				ticket: domain.Ticket{ID: "t1", Status: domain.TicketStatusProcessing},
				err:    tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/tickets/t1/start", nil)
			rec := httptest.NewRecorder()

			HandleTicketActions(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleTicketActions_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusOK},
		{name: "invalid transition", serviceErr: domain.ErrInvalidTransition, expectedStatus: http.StatusConflict},
		{name: "ticket not found", serviceErr: domain.ErrTicketNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubTicketLedger{
				ticket: domain.Ticket{ID: "t1", Status: domain.TicketStatusCompleted},
				err:    tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/tickets/t1/complete", nil)
			rec := httptest.NewRecorder()

			HandleTicketActions(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestHandleTicketActions_Cancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "success",
			body:           `{"requester_id":"p1"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid json",
			body:           `{"requester_id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not authorized",
			body:           `{"requester_id":"p2"}`,
			serviceErr:     domain.ErrNotAuthorized,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "already terminal",
			body:           `{"requester_id":"p1"}`,
			serviceErr:     domain.ErrAlreadyTerminal,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubTicketLedger{
				ticket: domain.Ticket{ID: "t1", Status: domain.TicketStatusCancelled},
				err:    tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/tickets/t1/cancel", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleTicketActions(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestHandleTicketActions_BadRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "unknown action", method: http.MethodPost, path: "/tickets/t1/restart", expectedStatus: http.StatusNotFound},
		{name: "missing action", method: http.MethodPost, path: "/tickets/t1", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/tickets/t1/start", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			HandleTicketActions(&stubTicketLedger{}).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

type stubTicketLedger struct {
	ticket domain.Ticket
	err    error
}

func (s *stubTicketLedger) StartProcessing(_ context.Context, _ string) (domain.Ticket, error) {
	return s.ticket, s.err
}

func (s *stubTicketLedger) CompleteItem(_ context.Context, _ string) (domain.Ticket, error) {
	return s.ticket, s.err
}

func (s *stubTicketLedger) CancelItem(_ context.Context, _, _ string) (domain.Ticket, error) {
	return s.ticket, s.err
}
