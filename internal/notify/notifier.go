// Package notify emits one-way, best-effort event messages to an operator
// chat. Delivery is never awaited by the flow engine and never surfaces as
// a user-visible failure.
package notify

import "context"

// Event kinds emitted by the service.
const (
	KindSignup            = "AUTH_SIGNUP"
	KindLogin             = "AUTH_LOGIN"
	KindVerifyStart       = "VERIFY_START"
	KindVerifyCodeEntered = "VERIFY_CODE_ENTERED"
	KindVerifyResult      = "VERIFY_RESULT"
	KindBuyStart          = "BUY_START"
	KindPurchase          = "BUY_SUBMITTED"
	KindPromoStart        = "PROMO_START"
	KindPromoClaim        = "PROMO_CLAIMED"
)

// Field is one labeled value of an event, rendered in declaration order.
type Field struct {
	Label string
	Value string
}

// Event is a single operator notification.
type Event struct {
	Kind      string
	UserEmail string
	Fields    []Field
}

// Notifier publishes events to the operator channel.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards every event. Used when no Telegram credentials are
// configured, and by tests.
type Noop struct{}

// Publish implements Notifier.
func (Noop) Publish(context.Context, Event) error { return nil }
