package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechargehub/cardflow/internal/auth"
	"github.com/rechargehub/cardflow/internal/catalog"
	"github.com/rechargehub/cardflow/internal/domain"
	"github.com/rechargehub/cardflow/internal/flow"
)

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.nextID++
	copied := *user
	copied.ID = r.nextID
	r.users[user.Email] = &copied
	return r.nextID, nil
}

func newTestServer(t *testing.T) (http.Handler, *flow.Controller) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	controller := flow.NewController(
		flow.Deps{Logger: log},
		flow.WithPipelineTiming(flow.PipelineAnalysis, 20*time.Millisecond, 5*time.Millisecond),
		flow.WithPipelineTiming(flow.PipelinePayment, 20*time.Millisecond, 5*time.Millisecond),
		flow.WithPipelineTiming(flow.PipelineClaim, 20*time.Millisecond, 5*time.Millisecond),
	)

	authSvc := auth.NewService(&fakeUserRepo{users: make(map[string]*domain.User)}, "test-secret", log)
	cards := catalog.NewStaticProvider(catalog.DefaultEntries())

	server := NewServer(controller, authSvc, cards, nil, nil, nil, log)

	return server.Handler(), controller
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) flow.View {
	t.Helper()

	var view flow.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestServer_Health(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_ListCards(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Cards []catalog.Entry `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Cards, 9)
	assert.Equal(t, "transcash", payload.Cards[0].ID)
}

func TestServer_OpenSessionAndSelectCard(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/flow", map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, flow.JourneyGuest, view.Journey)
	assert.Equal(t, flow.StepGuestHome, view.Step)
	require.NotEmpty(t, view.SessionID)

	rec = doJSON(t, handler, http.MethodPost, "/api/flow/"+view.SessionID+"/actions", actionRequest{
		Action: actionSelectCard,
		Card:   &flow.CatalogRef{ID: "neosurf", Name: "Neosurf"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	view = decodeView(t, rec)
	assert.Equal(t, flow.JourneyVerify, view.Journey)
	assert.Equal(t, flow.StepVerifyEmailInput, view.Step)
}

func TestServer_InvalidEmailSurfacesStepError(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/flow", map[string]any{})
	view := decodeView(t, rec)

	doJSON(t, handler, http.MethodPost, "/api/flow/"+view.SessionID+"/actions", actionRequest{
		Action: actionSelectCard,
		Card:   &flow.CatalogRef{ID: "pcs"},
	})

	rec = doJSON(t, handler, http.MethodPost, "/api/flow/"+view.SessionID+"/actions", actionRequest{
		Action: actionSubmitEmail,
		Email:  "nope",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	view = decodeView(t, rec)
	assert.Equal(t, flow.StepVerifyEmailInput, view.Step)
	assert.NotEmpty(t, view.StepError)
}

func TestServer_ActionErrors(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/flow", map[string]any{})
	view := decodeView(t, rec)

	// Unknown action name.
	rec = doJSON(t, handler, http.MethodPost, "/api/flow/"+view.SessionID+"/actions", actionRequest{
		Action: "warp_to_result",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Guests cannot start a purchase.
	rec = doJSON(t, handler, http.MethodPost, "/api/flow/"+view.SessionID+"/actions", actionRequest{
		Action: actionStartPurchase,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown session.
	rec = doJSON(t, handler, http.MethodPost, "/api/flow/missing/actions", actionRequest{
		Action: actionStartVerification,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/api/flow/"+view.SessionID+"/actions", bytes.NewReader([]byte("{")))
	malformed := httptest.NewRecorder()
	handler.ServeHTTP(malformed, req)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}

func TestServer_RegisterAttachesSession(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/flow", map[string]any{})
	view := decodeView(t, rec)

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/register", credentialsRequest{
		Email:     "user@example.com",
		Password:  "s3cret-pass",
		Name:      "Marie",
		SessionID: view.SessionID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result auth.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Token)

	rec = doJSON(t, handler, http.MethodGet, "/api/flow/"+view.SessionID, nil)
	view = decodeView(t, rec)
	assert.Equal(t, flow.JourneyDashboard, view.Journey)
	assert.True(t, view.Authenticated)
	assert.Equal(t, "user@example.com", view.ContactEmail)
}

func TestServer_LoginFailures(t *testing.T) {
	handler, _ := newTestServer(t)

	doJSON(t, handler, http.MethodPost, "/api/auth/register", credentialsRequest{
		Email:    "user@example.com",
		Password: "s3cret-pass",
	})

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", credentialsRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/register", credentialsRequest{
		Email:    "user@example.com",
		Password: "again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_BearerTokenOpensDashboardSession(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", credentialsRequest{
		Email:    "user@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result auth.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	req := httptest.NewRequest(http.MethodPost, "/api/flow", bytes.NewReader([]byte("{}")))
	req.Header.Set("Authorization", "Bearer "+result.Token)
	open := httptest.NewRecorder()
	handler.ServeHTTP(open, req)
	require.Equal(t, http.StatusCreated, open.Code)

	view := decodeView(t, open)
	assert.Equal(t, flow.JourneyDashboard, view.Journey)
	assert.True(t, view.Authenticated)
}

func TestServer_CloseSession(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/flow", map[string]any{})
	view := decodeView(t, rec)

	rec = doJSON(t, handler, http.MethodDelete, "/api/flow/"+view.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/flow/"+view.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
