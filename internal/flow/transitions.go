package flow

// validTransitions contains the permitted in-journey step transitions.
// Journey switches (entering Verify/Buy/Promo, exiting back to Guest or
// Dashboard) go through Controller reset logic instead of this table.
var validTransitions = map[Journey]map[Step][]Step{
	JourneyVerify: {
		StepVerifyCardSelection: {
			StepVerifyEmailInput,
			// Quick sign-in shortcut sets the contact email itself and
			// skips the email screen entirely.
			StepVerifyCodeInput,
		},
		StepVerifyEmailInput: {
			StepVerifyCodeInput,
		},
		StepVerifyCodeInput: {
			StepVerifyAnalysis,
		},
		StepVerifyAnalysis: {
			StepVerifyResult,
		},
	},
	JourneyBuy: {
		StepBuyCardSelection: {
			StepBuyAmountSelection,
		},
		StepBuyAmountSelection: {
			StepBuyPaymentMethod,
		},
		StepBuyPaymentMethod: {
			StepBuyPaymentInfo,
		},
		StepBuyPaymentInfo: {
			StepBuyProcessing,
		},
		StepBuyProcessing: {
			StepBuyResult,
		},
		StepBuyResult: {
			// Declined and AddressError outcomes retry from the payment
			// info screen with the earlier selections retained.
			StepBuyPaymentInfo,
		},
	},
	JourneyPromo: {
		StepPromoAddress: {
			StepPromoCard,
		},
		StepPromoCard: {
			StepPromoProcessing,
		},
		StepPromoProcessing: {
			StepPromoResult,
		},
	},
}

var transitionRecorder = func(journey, from, to string) {}

// RegisterTransitionRecorder allows external packages to observe step
// transitions, e.g. for metrics.
func RegisterTransitionRecorder(recorder func(journey, from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string, string) {}
		return
	}

	transitionRecorder = recorder
}

var outcomeRecorder = func(result string) {}

// RegisterOutcomeRecorder allows external packages to observe resolved
// payment outcomes.
func RegisterOutcomeRecorder(recorder func(result string)) {
	if recorder == nil {
		outcomeRecorder = func(string) {}
		return
	}

	outcomeRecorder = recorder
}

var pipelineRecorder = func(kind, event string) {}

// RegisterPipelineRecorder allows external packages to observe pipeline
// lifecycle events (started, completed).
func RegisterPipelineRecorder(recorder func(kind, event string)) {
	if recorder == nil {
		pipelineRecorder = func(string, string) {}
		return
	}

	pipelineRecorder = recorder
}

var sessionGauge = func(count int) {}

// RegisterSessionGauge allows external packages to track the live session
// count.
func RegisterSessionGauge(recorder func(count int)) {
	if recorder == nil {
		sessionGauge = func(int) {}
		return
	}

	sessionGauge = recorder
}

// IsTransitionAllowed reports whether moving between two steps of the given
// journey is valid.
func IsTransitionAllowed(j Journey, from, to Step) bool {
	steps, ok := validTransitions[j]
	if !ok {
		return false
	}

	for _, step := range steps[from] {
		if step == to {
			return true
		}
	}

	return false
}
