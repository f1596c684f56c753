package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/service-booking/internal/domain"
)

// PaymentStatus represents the provider-side state of a payment attempt.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSucceeded PaymentStatus = "succeeded"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

var validTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:   {StatusSucceeded, StatusFailed},
	StatusSucceeded: {StatusRefunded},
	StatusFailed:    {},
	StatusRefunded:  {},
}

// IsValid returns true if the payment status is recognized.
func (s PaymentStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// Payment is the aggregate root for a single payment attempt against a
// booking. A booking may accumulate several payments over its lifetime
// (failed attempts, retries, refunds). The provider transaction ID is the
// idempotency key: at most one payment row exists per provider transaction.
type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	userID        uuid.UUID
	amountCents   int64
	currency      string
	status        PaymentStatus
	providerTxnID string
	receiptURL    string
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPayment creates a pending payment for a booking, typically at
// payment-intent creation time.
func NewPayment(
	bookingID, userID uuid.UUID,
	amountCents int64,
	currency string,
	providerTxnID string,
) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount must be positive")
	}
	if providerTxnID == "" {
		return nil, domain.NewValidationError("provider transaction ID is required")
	}

	now := time.Now().UTC()
	return &Payment{
		id:            uuid.New(),
		bookingID:     bookingID,
		userID:        userID,
		amountCents:   amountCents,
		currency:      currency,
		status:        StatusPending,
		providerTxnID: providerTxnID,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, bookingID, userID uuid.UUID,
	amountCents int64,
	currency string,
	status PaymentStatus,
	providerTxnID, receiptURL string,
	version int64,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		userID:        userID,
		amountCents:   amountCents,
		currency:      currency,
		status:        status,
		providerTxnID: providerTxnID,
		receiptURL:    receiptURL,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID         { return p.id }
func (p *Payment) BookingID() uuid.UUID  { return p.bookingID }
func (p *Payment) UserID() uuid.UUID     { return p.userID }
func (p *Payment) AmountCents() int64    { return p.amountCents }
func (p *Payment) Currency() string      { return p.currency }
func (p *Payment) Status() PaymentStatus { return p.status }
func (p *Payment) ProviderTxnID() string { return p.providerTxnID }
func (p *Payment) ReceiptURL() string    { return p.receiptURL }
func (p *Payment) Version() int64        { return p.version }
func (p *Payment) CreatedAt() time.Time  { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time  { return p.updatedAt }

// --- Behavior ---

// MarkSucceeded records provider confirmation with an optional receipt.
func (p *Payment) MarkSucceeded(receiptURL string) error {
	if !p.status.CanTransitionTo(StatusSucceeded) {
		return domain.NewInvalidStateError(string(p.status), string(StatusSucceeded))
	}
	p.status = StatusSucceeded
	p.receiptURL = receiptURL
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkFailed records provider rejection.
func (p *Payment) MarkFailed() error {
	if !p.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(p.status), string(StatusFailed))
	}
	p.status = StatusFailed
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded records a refund of a succeeded payment.
func (p *Payment) MarkRefunded() error {
	if !p.status.CanTransitionTo(StatusRefunded) {
		return domain.NewInvalidStateError(string(p.status), string(StatusRefunded))
	}
	p.status = StatusRefunded
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}
