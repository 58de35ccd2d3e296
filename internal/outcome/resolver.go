// Package outcome classifies the terminal state of a simulated payment
// attempt from a single pseudo-random draw.
package outcome

import "math/rand"

// Outcome is the terminal classification of a payment attempt.
type Outcome string

const (
	// Success indicates the simulated payment went through.
	Success Outcome = "SUCCESS"
	// Declined indicates the simulated payment was refused.
	Declined Outcome = "DECLINED"
	// AddressError indicates the billing information was rejected.
	AddressError Outcome = "ADDRESS_ERROR"
)

// Fixed thresholds against a uniform [0,1) draw: ~70% success, ~15%
// address error, ~15% declined.
const (
	declinedThreshold     = 0.85
	addressErrorThreshold = 0.70
)

// Resolver produces one Outcome per payment submission.
type Resolver interface {
	Resolve() Outcome
}

type randomResolver struct {
	draw func() float64
}

// NewResolver builds a Resolver backed by the shared math/rand source.
func NewResolver() Resolver {
	return &randomResolver{draw: rand.Float64}
}

// NewSeededResolver builds a Resolver over a dedicated seeded source.
func NewSeededResolver(seed int64) Resolver {
	rng := rand.New(rand.NewSource(seed))
	return &randomResolver{draw: rng.Float64}
}

// NewResolverFromDraw builds a Resolver over an arbitrary draw function.
// Tests use it to pin the draw to a fixed value.
func NewResolverFromDraw(draw func() float64) Resolver {
	return &randomResolver{draw: draw}
}

// Resolve consumes one draw and classifies it.
func (r *randomResolver) Resolve() Outcome {
	return Classify(r.draw())
}

// Classify maps a uniform [0,1) draw onto an Outcome.
func Classify(r float64) Outcome {
	switch {
	case r > declinedThreshold:
		return Declined
	case r > addressErrorThreshold:
		return AddressError
	default:
		return Success
	}
}
