package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for Payment aggregates.
type PaymentRepository interface {
	// FindByID retrieves a payment by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBookingID retrieves all payments recorded against a booking,
	// newest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)

	// FindByProviderTxnID retrieves a payment by its provider transaction ID.
	FindByProviderTxnID(ctx context.Context, providerTxnID string) (*Payment, error)

	// GetRevenueStats returns payment statistics (admin).
	GetRevenueStats(ctx context.Context) (totalRevenueCents int64, countByStatus map[string]int64, err error)

	// Save persists a new payment aggregate.
	Save(ctx context.Context, payment *Payment) error

	// Update persists changes to an existing payment aggregate with optimistic locking.
	Update(ctx context.Context, payment *Payment) error
}

// ReconcileResult reports what a reconciliation attempt did.
type ReconcileResult struct {
	// Applied is false when the booking was already paid or the provider
	// transaction was already recorded; the attempt is then a no-op.
	Applied bool

	// Payment is the recorded payment when Applied is true.
	Payment *Payment
}

// Reconciler is the transactional port for payment reconciliation. The
// conditional booking update and the payment insert must land in the same
// database transaction: either both apply or neither.
type Reconciler interface {
	// ReconcileSucceeded marks the booking paid (and confirmed if pending)
	// and records the succeeded payment, if and only if the booking is
	// still unpaid and the provider transaction has not been seen before.
	// Returns Applied=false for duplicate deliveries.
	ReconcileSucceeded(ctx context.Context, bookingID, userID uuid.UUID, providerTxnID string, amountCents int64, currency, receiptURL string) (ReconcileResult, error)
}
