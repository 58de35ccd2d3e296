// Package recorder persists the outcome of verification, purchase and
// promo-claim submissions. Recorders are invoked fire-and-forget by the
// flow engine: their failure never blocks a step transition.
package recorder

import "context"

// Verification is one code-verification submission.
type Verification struct {
	SessionID string
	UserID    int64
	UserEmail string
	Code      string
	CardID    string
	Status    string
}

// Purchase is one resolved-Success payment submission.
type Purchase struct {
	SessionID string
	UserID    int64
	Amount    int
	Method    string
	Status    string
}

// Claim is one promo-claim submission.
type Claim struct {
	SessionID  string
	UserID     int64
	FirstName  string
	LastName   string
	Street     string
	City       string
	PostalCode string
	Status     string
}

// VerificationRecorder records verification submissions.
type VerificationRecorder interface {
	RecordVerification(ctx context.Context, v Verification) error
}

// PurchaseRecorder records successful purchase submissions.
type PurchaseRecorder interface {
	RecordPurchase(ctx context.Context, p Purchase) error
}

// ClaimRecorder records promo-claim submissions.
type ClaimRecorder interface {
	RecordClaim(ctx context.Context, c Claim) error
}
