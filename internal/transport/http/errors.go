package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
)

const (
	codeMethodNotAllowed        = "method_not_allowed"
	codeNotFound                = "not_found"
	codeInvalidRequestBody      = "invalid_request_body"
	codeQueueNameRequired       = "queue_name_required"
	codeParticipantNameRequired = "participant_name_required"
	codeInvalidCapacity         = "invalid_capacity"
	codeInvalidID               = "invalid_id"
	codeQueueNotFound           = "queue_not_found"
	codeTicketNotFound          = "ticket_not_found"
	codeQueueUnavailable        = "queue_unavailable"
	codeInvalidTransition       = "invalid_transition"
	codeCapacityExceeded        = "capacity_exceeded"
	codeNotAuthorized           = "not_authorized"
	codeAlreadyTerminal         = "already_terminal"
	codeForbidden               = "forbidden"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the ledger's failure kinds onto stable HTTP
// statuses and error codes. Unknown errors become opaque 500s.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQueueNameRequired):
		writeError(w, http.StatusBadRequest, codeQueueNameRequired, err.Error())
	case errors.Is(err, domain.ErrParticipantNameRequired):
		writeError(w, http.StatusBadRequest, codeParticipantNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrQueueNotFound):
		writeError(w, http.StatusNotFound, codeQueueNotFound, err.Error())
	case errors.Is(err, domain.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
	case errors.Is(err, domain.ErrQueueUnavailable):
		writeError(w, http.StatusConflict, codeQueueUnavailable, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, codeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, codeNotAuthorized, err.Error())
	case errors.Is(err, domain.ErrAlreadyTerminal):
		writeError(w, http.StatusConflict, codeAlreadyTerminal, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
