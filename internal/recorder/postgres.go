package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rechargehub/cardflow/internal/apperr"
)

// PostgresRecorder implements all three recorder contracts over a SQL
// database.
type PostgresRecorder struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresRecorder creates a SQL-backed recorder.
func NewPostgresRecorder(db *sql.DB, log *slog.Logger) *PostgresRecorder {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresRecorder{db: db, log: log}
}

// RecordVerification persists a verification submission.
func (r *PostgresRecorder) RecordVerification(ctx context.Context, v Verification) error {
	const query = `
		INSERT INTO verifications (session_id, user_id, user_email, code, card_id, status, created_at)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7)
	`

	if _, err := r.db.ExecContext(ctx, query,
		v.SessionID, v.UserID, v.UserEmail, v.Code, v.CardID, v.Status, time.Now().UTC(),
	); err != nil {
		r.log.Error("failed to record verification",
			slog.String("session_id", v.SessionID), slog.Any("error", err))
		return apperr.NewDatabaseError(fmt.Errorf("insert verification: %w", err))
	}

	return nil
}

// RecordPurchase persists a purchase submission.
func (r *PostgresRecorder) RecordPurchase(ctx context.Context, p Purchase) error {
	const query = `
		INSERT INTO transactions (session_id, user_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := r.db.ExecContext(ctx, query,
		p.SessionID, p.UserID, p.Amount, p.Method, p.Status, time.Now().UTC(),
	); err != nil {
		r.log.Error("failed to record purchase",
			slog.String("session_id", p.SessionID), slog.Any("error", err))
		return apperr.NewDatabaseError(fmt.Errorf("insert transaction: %w", err))
	}

	return nil
}

// RecordClaim persists a promo-claim submission. The ephemeral card fields
// collected on the promo card screen are deliberately not part of the
// record.
func (r *PostgresRecorder) RecordClaim(ctx context.Context, c Claim) error {
	const query = `
		INSERT INTO promo_claims (session_id, user_id, first_name, last_name, street, city, postal_code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err := r.db.ExecContext(ctx, query,
		c.SessionID, c.UserID, c.FirstName, c.LastName, c.Street, c.City, c.PostalCode, c.Status, time.Now().UTC(),
	); err != nil {
		r.log.Error("failed to record promo claim",
			slog.String("session_id", c.SessionID), slog.Any("error", err))
		return apperr.NewDatabaseError(fmt.Errorf("insert promo claim: %w", err))
	}

	return nil
}
