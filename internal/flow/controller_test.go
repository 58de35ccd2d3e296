package flow

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechargehub/cardflow/internal/outcome"
	"github.com/rechargehub/cardflow/internal/recorder"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capturingRecorder collects every submission handed to the background
// recording calls.
type capturingRecorder struct {
	mu            sync.Mutex
	verifications []recorder.Verification
	purchases     []recorder.Purchase
	claims        []recorder.Claim
}

func (r *capturingRecorder) RecordVerification(_ context.Context, v recorder.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifications = append(r.verifications, v)
	return nil
}

func (r *capturingRecorder) RecordPurchase(_ context.Context, p recorder.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases = append(r.purchases, p)
	return nil
}

func (r *capturingRecorder) RecordClaim(_ context.Context, c recorder.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims = append(r.claims, c)
	return nil
}

func (r *capturingRecorder) verificationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.verifications)
}

func (r *capturingRecorder) purchaseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.purchases)
}

func (r *capturingRecorder) claimCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.claims)
}

// newTestController builds a controller with millisecond pipelines, a pinned
// outcome draw, and capturing collaborators.
func newTestController(t *testing.T, draw float64) (*Controller, *capturingRecorder) {
	t.Helper()

	records := &capturingRecorder{}
	c := NewController(
		Deps{
			Resolver:      outcome.NewResolverFromDraw(func() float64 { return draw }),
			Verifications: records,
			Purchases:     records,
			Claims:        records,
			Logger:        testLogger(),
		},
		WithPipelineTiming(PipelineAnalysis, 20*time.Millisecond, 5*time.Millisecond),
		WithPipelineTiming(PipelinePayment, 20*time.Millisecond, 5*time.Millisecond),
		WithPipelineTiming(PipelineClaim, 20*time.Millisecond, 5*time.Millisecond),
	)

	return c, records
}

func openGuest(t *testing.T, c *Controller) string {
	t.Helper()

	id, err := c.OpenSession(context.Background(), Identity{})
	require.NoError(t, err)
	return id
}

func openAuthenticated(t *testing.T, c *Controller) string {
	t.Helper()

	id, err := c.OpenSession(context.Background(), Identity{
		UserID:        7,
		Email:         "user@example.com",
		Authenticated: true,
	})
	require.NoError(t, err)
	return id
}

func mustView(t *testing.T, c *Controller, id string) View {
	t.Helper()

	v, err := c.View(context.Background(), id)
	require.NoError(t, err)
	return v
}

func waitForStep(t *testing.T, c *Controller, id string, step Step) {
	t.Helper()

	require.Eventually(t, func() bool {
		return mustView(t, c, id).Step == step
	}, time.Second, 2*time.Millisecond, "session never reached %s", step)
}

func TestController_OpenSession(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()

	guestID := openGuest(t, c)
	v := mustView(t, c, guestID)
	assert.Equal(t, JourneyGuest, v.Journey)
	assert.Equal(t, StepGuestHome, v.Step)
	assert.False(t, v.Authenticated)

	authID := openAuthenticated(t, c)
	v = mustView(t, c, authID)
	assert.Equal(t, JourneyDashboard, v.Journey)
	assert.Equal(t, StepDashboardHome, v.Step)
	assert.True(t, v.Authenticated)
	assert.Equal(t, "user@example.com", v.ContactEmail)

	assert.Equal(t, 2, c.SessionCount())

	_, err := c.View(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestController_GuestCardSelectionEntersVerify(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)

	err := c.SelectCard(ctx, id, CatalogRef{ID: "neosurf", Name: "Neosurf"})
	require.NoError(t, err)

	v := mustView(t, c, id)
	assert.Equal(t, JourneyVerify, v.Journey)
	assert.Equal(t, StepVerifyEmailInput, v.Step)
	require.NotNil(t, v.SelectedCard)
	assert.Equal(t, "neosurf", v.SelectedCard.ID)
}

func TestController_SubmitEmailValidation(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)
	require.NoError(t, c.SelectCard(ctx, id, CatalogRef{ID: "pcs"}))

	// Invalid email keeps the step and surfaces a message, not an error.
	require.NoError(t, c.SubmitEmail(ctx, id, "not-an-email"))
	v := mustView(t, c, id)
	assert.Equal(t, StepVerifyEmailInput, v.Step)
	assert.Equal(t, msgInvalidEmail, v.StepError)

	require.NoError(t, c.SubmitEmail(ctx, id, "user@example.com"))
	v = mustView(t, c, id)
	assert.Equal(t, StepVerifyCodeInput, v.Step)
	assert.Empty(t, v.StepError)
	assert.Equal(t, "user@example.com", v.ContactEmail)
}

func TestController_SubmitCodeTooShortIsNoOp(t *testing.T) {
	c, records := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)
	require.NoError(t, c.SelectCard(ctx, id, CatalogRef{ID: "pcs"}))
	require.NoError(t, c.SubmitEmail(ctx, id, "user@example.com"))

	require.NoError(t, c.SubmitCode(ctx, id, "1234"))

	v := mustView(t, c, id)
	assert.Equal(t, StepVerifyCodeInput, v.Step)
	assert.Empty(t, v.StepError)
	assert.Zero(t, records.verificationCount())
}

func TestController_VerificationJourney(t *testing.T) {
	c, records := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)
	require.NoError(t, c.SelectCard(ctx, id, CatalogRef{ID: "transcash"}))
	require.NoError(t, c.SubmitEmail(ctx, id, "user@example.com"))

	require.NoError(t, c.SubmitCode(ctx, id, "ABCDE-12345"))

	v := mustView(t, c, id)
	assert.Equal(t, StepVerifyAnalysis, v.Step)
	require.NotNil(t, v.Progress)
	assert.Equal(t, analysisPhases[0], v.Progress.ActivePhase)

	require.Eventually(t, func() bool {
		return records.verificationCount() == 1
	}, time.Second, 2*time.Millisecond)

	waitForStep(t, c, id, StepVerifyResult)

	v = mustView(t, c, id)
	assert.Nil(t, v.Progress)

	// Guest finish goes back to the guest home.
	require.NoError(t, c.FinishVerification(ctx, id))
	v = mustView(t, c, id)
	assert.Equal(t, JourneyGuest, v.Journey)
	assert.Equal(t, StepGuestHome, v.Step)
}

func TestController_QuickSignIn(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)
	require.NoError(t, c.StartVerification(ctx, id))

	require.NoError(t, c.QuickSignIn(ctx, id, ""))

	v := mustView(t, c, id)
	assert.Equal(t, StepVerifyCodeInput, v.Step)
	assert.Equal(t, quickSignInEmail, v.ContactEmail)
}

func TestController_StartPurchaseRequiresAuth(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)

	assert.ErrorIs(t, c.StartPurchase(ctx, id), ErrAuthRequired)
	assert.ErrorIs(t, c.StartPromo(ctx, id), ErrAuthRequired)
}

func TestController_PurchaseJourneySuccess(t *testing.T) {
	c, records := newTestController(t, 0.5)
	ctx := context.Background()
	id := openAuthenticated(t, c)

	require.NoError(t, c.StartPurchase(ctx, id))
	require.NoError(t, c.SelectCard(ctx, id, CatalogRef{ID: "steam"}))

	// Off-catalog amount keeps the step.
	require.NoError(t, c.SelectAmount(ctx, id, 42))
	v := mustView(t, c, id)
	assert.Equal(t, StepBuyAmountSelection, v.Step)
	assert.Equal(t, msgInvalidAmount, v.StepError)

	require.NoError(t, c.SelectAmount(ctx, id, 100))
	require.NoError(t, c.SelectPaymentMethod(ctx, id, MethodCard))
	require.NoError(t, c.SubmitPayment(ctx, id))

	v = mustView(t, c, id)
	assert.Equal(t, StepBuyProcessing, v.Step)
	assert.Equal(t, outcome.Success, v.PaymentOutcome)

	require.Eventually(t, func() bool {
		return records.purchaseCount() == 1
	}, time.Second, 2*time.Millisecond)

	records.mu.Lock()
	p := records.purchases[0]
	records.mu.Unlock()
	assert.Equal(t, 100, p.Amount)
	assert.Equal(t, string(MethodCard), p.Method)
	assert.Equal(t, string(outcome.Success), p.Status)

	waitForStep(t, c, id, StepBuyResult)

	// Retry is only offered on failure.
	assert.ErrorIs(t, c.RetryPayment(ctx, id), ErrInvalidAction)
}

func TestController_PurchaseDeclinedRetry(t *testing.T) {
	c, records := newTestController(t, 0.9)
	ctx := context.Background()
	id := openAuthenticated(t, c)

	require.NoError(t, c.StartPurchase(ctx, id))
	require.NoError(t, c.SelectCard(ctx, id, CatalogRef{ID: "amazon"}))
	require.NoError(t, c.SelectAmount(ctx, id, 250))
	require.NoError(t, c.SelectPaymentMethod(ctx, id, MethodCrypto))
	require.NoError(t, c.SubmitPayment(ctx, id))

	v := mustView(t, c, id)
	assert.Equal(t, outcome.Declined, v.PaymentOutcome)

	waitForStep(t, c, id, StepBuyResult)

	// Declined purchases are never recorded.
	assert.Zero(t, records.purchaseCount())

	require.NoError(t, c.RetryPayment(ctx, id))
	v = mustView(t, c, id)
	assert.Equal(t, StepBuyPaymentInfo, v.Step)
	assert.Equal(t, 250, v.SelectedAmount)
	assert.Equal(t, MethodCrypto, v.PaymentMethod)
	require.NotNil(t, v.SelectedCard)
	assert.Equal(t, "amazon", v.SelectedCard.ID)
}

func TestController_PromoJourney(t *testing.T) {
	c, records := newTestController(t, 0.5)
	ctx := context.Background()
	id := openAuthenticated(t, c)

	require.NoError(t, c.StartPromo(ctx, id))

	// Incomplete address keeps the step.
	require.NoError(t, c.SubmitPromoAddress(ctx, id, Address{FirstName: "Marie"}))
	v := mustView(t, c, id)
	assert.Equal(t, StepPromoAddress, v.Step)
	assert.Equal(t, msgIncompleteAddr, v.StepError)

	addr := Address{
		FirstName:  "Marie",
		LastName:   "Dupont",
		Street:     "1 rue de la Paix",
		City:       "Paris",
		PostalCode: "75002",
	}
	require.NoError(t, c.SubmitPromoAddress(ctx, id, addr))
	require.NoError(t, c.SubmitPromoCard(ctx, id, CardEntry{Number: "4111111111111111", Expiry: "12/27", CVV: "123"}))

	v = mustView(t, c, id)
	assert.Equal(t, StepPromoProcessing, v.Step)
	require.NotNil(t, v.Progress)
	assert.Empty(t, v.Progress.ActivePhase)

	require.Eventually(t, func() bool {
		return records.claimCount() == 1
	}, time.Second, 2*time.Millisecond)

	records.mu.Lock()
	claim := records.claims[0]
	records.mu.Unlock()
	assert.Equal(t, "Dupont", claim.LastName)
	assert.Equal(t, "75002", claim.PostalCode)

	waitForStep(t, c, id, StepPromoResult)
}

func TestController_ReturnToDashboardResetsJourney(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openAuthenticated(t, c)

	require.NoError(t, c.StartPurchase(ctx, id))
	require.NoError(t, c.SelectCard(ctx, id, CatalogRef{ID: "itunes"}))
	require.NoError(t, c.SelectAmount(ctx, id, 50))

	require.NoError(t, c.ReturnToDashboard(ctx, id))

	v := mustView(t, c, id)
	assert.Equal(t, JourneyDashboard, v.Journey)
	assert.Equal(t, StepDashboardHome, v.Step)
	assert.Nil(t, v.SelectedCard)
	assert.Zero(t, v.SelectedAmount)
	assert.True(t, v.Authenticated)
	assert.Equal(t, "user@example.com", v.ContactEmail)

	// Already home.
	assert.ErrorIs(t, c.ReturnToDashboard(ctx, id), ErrInvalidAction)
}

func TestController_ExitCancelsPendingPipeline(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openAuthenticated(t, c)

	require.NoError(t, c.StartVerification(ctx, id))
	require.NoError(t, c.QuickSignIn(ctx, id, "user@gmail.com"))
	require.NoError(t, c.SubmitCode(ctx, id, "ABCDE"))

	v := mustView(t, c, id)
	require.Equal(t, StepVerifyAnalysis, v.Step)

	// Leave the journey before the analysis completes. The stale completion
	// callback must not move the session anywhere.
	require.NoError(t, c.ReturnToDashboard(ctx, id))

	time.Sleep(60 * time.Millisecond)

	v = mustView(t, c, id)
	assert.Equal(t, JourneyDashboard, v.Journey)
	assert.Equal(t, StepDashboardHome, v.Step)
}

func TestController_LogoutClearsIdentity(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openAuthenticated(t, c)

	require.NoError(t, c.Logout(ctx, id))

	v := mustView(t, c, id)
	assert.Equal(t, JourneyGuest, v.Journey)
	assert.Equal(t, StepGuestHome, v.Step)
	assert.False(t, v.Authenticated)
	assert.Empty(t, v.ContactEmail)
}

func TestController_AuthenticateMovesToDashboard(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)

	require.NoError(t, c.Authenticate(ctx, id, Identity{UserID: 3, Email: "new@example.com"}))

	v := mustView(t, c, id)
	assert.Equal(t, JourneyDashboard, v.Journey)
	assert.True(t, v.Authenticated)
	assert.Equal(t, "new@example.com", v.ContactEmail)
}

func TestController_CloseSession(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)

	require.NoError(t, c.CloseSession(ctx, id))
	assert.Zero(t, c.SessionCount())

	_, err := c.View(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, c.CloseSession(ctx, id), ErrSessionNotFound)
}

func TestController_ExpireIdle(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	c := NewController(Deps{Logger: testLogger()}, WithClock(clock))
	ctx := context.Background()

	staleID, err := c.OpenSession(ctx, Identity{})
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(45 * time.Minute)
	mu.Unlock()

	freshID, err := c.OpenSession(ctx, Identity{})
	require.NoError(t, err)

	expired := c.expireIdle(ctx, 30*time.Minute)
	assert.Equal(t, 1, expired)

	_, err = c.View(ctx, staleID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = c.View(ctx, freshID)
	assert.NoError(t, err)
}

func TestController_ActionsOutsideStepAreRejected(t *testing.T) {
	c, _ := newTestController(t, 0.5)
	ctx := context.Background()
	id := openGuest(t, c)

	assert.ErrorIs(t, c.SubmitEmail(ctx, id, "user@example.com"), ErrInvalidAction)
	assert.ErrorIs(t, c.SubmitCode(ctx, id, "ABCDE"), ErrInvalidAction)
	assert.ErrorIs(t, c.SelectAmount(ctx, id, 100), ErrInvalidAction)
	assert.ErrorIs(t, c.SubmitPayment(ctx, id), ErrInvalidAction)
	assert.ErrorIs(t, c.SubmitPromoCard(ctx, id, CardEntry{}), ErrInvalidAction)
	assert.ErrorIs(t, c.FinishVerification(ctx, id), ErrInvalidAction)
}
