// Package flow implements the guided user journeys as an explicit finite
// state machine: per-journey step enums, guarded transitions, and the
// time-driven processing steps.
package flow

// Journey is one of the mutually exclusive top-level user flows.
type Journey string

const (
	// JourneyGuest is the entry point for unauthenticated visitors.
	JourneyGuest Journey = "guest"
	// JourneyDashboard is the entry point for authenticated users.
	JourneyDashboard Journey = "dashboard"
	// JourneyVerify is the prepaid-code verification flow.
	JourneyVerify Journey = "verify"
	// JourneyBuy is the card purchase flow.
	JourneyBuy Journey = "buy"
	// JourneyPromo is the promotional claim flow.
	JourneyPromo Journey = "promo"
)

// Step identifies a single screen within a journey's ordered sequence.
type Step string

const (
	StepGuestHome Step = "guest_home"

	StepDashboardHome Step = "dashboard_home"

	StepVerifyCardSelection Step = "verify_card_selection"
	StepVerifyEmailInput    Step = "verify_email_input"
	StepVerifyCodeInput     Step = "verify_code_input"
	StepVerifyAnalysis      Step = "verify_analysis"
	StepVerifyResult        Step = "verify_result"

	StepBuyCardSelection   Step = "buy_card_selection"
	StepBuyAmountSelection Step = "buy_amount_selection"
	StepBuyPaymentMethod   Step = "buy_payment_method"
	StepBuyPaymentInfo     Step = "buy_payment_info"
	StepBuyProcessing      Step = "buy_processing"
	StepBuyResult          Step = "buy_result"

	StepPromoAddress    Step = "promo_address"
	StepPromoCard       Step = "promo_card"
	StepPromoProcessing Step = "promo_processing"
	StepPromoResult     Step = "promo_result"
)

// journeySteps lists every step belonging to a journey, in screen order.
var journeySteps = map[Journey][]Step{
	JourneyGuest:     {StepGuestHome},
	JourneyDashboard: {StepDashboardHome},
	JourneyVerify: {
		StepVerifyCardSelection,
		StepVerifyEmailInput,
		StepVerifyCodeInput,
		StepVerifyAnalysis,
		StepVerifyResult,
	},
	JourneyBuy: {
		StepBuyCardSelection,
		StepBuyAmountSelection,
		StepBuyPaymentMethod,
		StepBuyPaymentInfo,
		StepBuyProcessing,
		StepBuyResult,
	},
	JourneyPromo: {
		StepPromoAddress,
		StepPromoCard,
		StepPromoProcessing,
		StepPromoResult,
	},
}

// initialSteps maps each journey to the step it opens on.
var initialSteps = map[Journey]Step{
	JourneyGuest:     StepGuestHome,
	JourneyDashboard: StepDashboardHome,
	JourneyVerify:    StepVerifyCardSelection,
	JourneyBuy:       StepBuyCardSelection,
	JourneyPromo:     StepPromoAddress,
}

// InitialStep returns the step a journey opens on.
func InitialStep(j Journey) Step {
	return initialSteps[j]
}

// StepBelongsTo reports whether the step is a member of the journey's enum.
func StepBelongsTo(j Journey, s Step) bool {
	for _, step := range journeySteps[j] {
		if step == s {
			return true
		}
	}

	return false
}
