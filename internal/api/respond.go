package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rechargehub/cardflow/internal/auth"
	"github.com/rechargehub/cardflow/internal/flow"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFlowError maps flow and auth sentinels to HTTP statuses; everything
// else goes through the central error handler as a 500.
func (s *Server) writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, flow.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, flow.ErrInvalidAction), errors.Is(err, flow.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "action not allowed in the current step")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, "user already exists")
	default:
		message, retryable := s.errs.Handle(r.Context(), err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message, Retryable: retryable})
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	return dec.Decode(dst)
}
