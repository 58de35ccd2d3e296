package flow

import (
	"strings"
	"time"

	"github.com/rechargehub/cardflow/internal/outcome"
	"github.com/rechargehub/cardflow/internal/progress"
)

// PaymentMethod is one of the offered payment channels.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodCrypto PaymentMethod = "crypto"
	MethodPayPal PaymentMethod = "paypal"
)

// Amounts is the fixed set of purchasable denominations, in euros.
var Amounts = []int{20, 50, 100, 150, 250}

// minCodeLength is the shortest prepaid code accepted for analysis.
const minCodeLength = 5

// Identity carries the authentication identity attached to a session. It is
// the only field that survives a journey reset.
type Identity struct {
	UserID        int64  `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Token         string `json:"token,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// CatalogRef references the catalog card selected for the journey.
type CatalogRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IconRef    string `json:"icon_ref,omitempty"`
	ColorClass string `json:"color_class,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Address holds the promo delivery address. All five fields are required.
type Address struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Complete reports whether every address field is non-empty.
func (a Address) Complete() bool {
	fields := []string{a.FirstName, a.LastName, a.Street, a.City, a.PostalCode}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}

	return true
}

// CardEntry holds the ephemeral card fields collected on the promo card
// screen. Never serialized, never persisted beyond submission.
type CardEntry struct {
	Number string `json:"-"`
	Expiry string `json:"-"`
	CVV    string `json:"-"`
}

// Session is the mutable data record threaded through every step of one
// active user journey.
type Session struct {
	ID       string   `json:"id"`
	Identity Identity `json:"identity"`

	Journey Journey `json:"journey"`
	Step    Step    `json:"step"`

	SelectedCard    *CatalogRef     `json:"selected_card,omitempty"`
	ContactEmail    string          `json:"contact_email,omitempty"`
	EnteredCode     string          `json:"entered_code,omitempty"`
	SelectedAmount  int             `json:"selected_amount,omitempty"`
	PaymentMethod   PaymentMethod   `json:"payment_method,omitempty"`
	DeliveryAddress *Address        `json:"delivery_address,omitempty"`
	CardEntry       *CardEntry      `json:"-"`
	PaymentOutcome  outcome.Outcome `json:"payment_outcome,omitempty"`

	// StepError is the step-scoped validation message; cleared on every
	// successful transition.
	StepError string `json:"step_error,omitempty"`

	// Progress is live only while a processing step is active. Never
	// persisted and never shared across sessions.
	Progress *progress.Pipeline `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateEmail reports whether the contact email passes the gate for
// advancing past the email-collection step.
func ValidateEmail(email string) bool {
	return strings.Contains(email, "@")
}

// ValidateCode reports whether a prepaid code may start the analysis step.
func ValidateCode(code string) bool {
	return code != "" && len(code) >= minCodeLength
}

// ValidAmount reports whether the amount is one of the fixed denominations.
func ValidAmount(amount int) bool {
	for _, a := range Amounts {
		if a == amount {
			return true
		}
	}

	return false
}

// ValidPaymentMethod reports whether the method is one of the offered
// payment channels.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCard, MethodCrypto, MethodPayPal:
		return true
	default:
		return false
	}
}

// ResetForJourneyExit clears every journey-scoped field, cancels any live
// pipeline, and returns the step to the current journey's initial step.
// The authentication identity and the contact email pre-filled at login are
// left untouched. Idempotent.
func (s *Session) ResetForJourneyExit() {
	if s.Progress != nil {
		s.Progress.Cancel()
		s.Progress = nil
	}

	s.SelectedCard = nil
	s.EnteredCode = ""
	s.SelectedAmount = 0
	s.PaymentMethod = ""
	s.DeliveryAddress = nil
	s.CardEntry = nil
	s.PaymentOutcome = ""
	s.StepError = ""
	s.Step = InitialStep(s.Journey)
}
