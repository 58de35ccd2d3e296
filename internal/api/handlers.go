package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rechargehub/cardflow/internal/flow"
	"github.com/rechargehub/cardflow/internal/notify"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	// SessionID optionally binds the issued identity to an open flow
	// session, landing it on the dashboard.
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	s.attachIdentity(r, req.SessionID, result.User.ID, result.User.Email, result.User.Name, result.Token)
	s.publishAuthEvent(notify.KindSignup, result.User.Email)

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	s.attachIdentity(r, req.SessionID, result.User.ID, result.User.Email, result.User.Name, result.Token)
	s.publishAuthEvent(notify.KindLogin, result.User.Email)

	writeJSON(w, http.StatusOK, result)
}

// publishAuthEvent notifies the operator chat fire-and-forget.
func (s *Server) publishAuthEvent(kind, email string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.Publish(ctx, notify.Event{Kind: kind, UserEmail: email}); err != nil {
			s.log.Warn("failed to publish auth event",
				slog.String("kind", kind), slog.Any("error", err))
		}
	}()
}

// attachIdentity moves an already-open session onto the dashboard after a
// successful login or registration. A missing or unknown session is not an
// error; the client may open one later with the bearer token.
func (s *Server) attachIdentity(r *http.Request, sessionID string, userID int64, email, name, token string) {
	if sessionID == "" {
		return
	}

	ident := flow.Identity{
		UserID: userID,
		Email:  email,
		Name:   name,
		Token:  token,
	}
	if err := s.controller.Authenticate(r.Context(), sessionID, ident); err != nil {
		s.log.Warn("failed to attach identity to session",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cards": entries})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	ident := s.identityFromRequest(r)

	id, err := s.controller.OpenSession(r.Context(), ident)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	view, err := s.controller.View(r.Context(), id)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.controller.View(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// identityFromRequest parses an optional bearer token. Anonymous requests
// yield a guest identity.
func (s *Server) identityFromRequest(r *http.Request) flow.Identity {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return flow.Identity{}
	}

	claims, err := s.auth.ParseToken(token)
	if err != nil {
		s.log.Debug("rejected bearer token", slog.Any("error", err))
		return flow.Identity{}
	}

	return flow.Identity{
		UserID:        claims.UserID,
		Email:         claims.Email,
		Name:          claims.Name,
		Token:         token,
		Authenticated: true,
	}
}
