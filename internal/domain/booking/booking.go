package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/service-booking/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. Status and payment
// status are tracked on independent axes, coupled only by MarkPaid advancing
// a pending booking to confirmed.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	ownerID       uuid.UUID
	placeID       uuid.UUID
	window        StayWindow
	guests        int

	totalPriceCents int64
	currency        string

	status        BookingStatus
	paymentStatus PaymentStatus

	contactName  string
	contactEmail string

	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending and
// paymentStatus=unpaid. The stay must start strictly after today.
func NewBooking(
	ownerID uuid.UUID,
	placeID uuid.UUID,
	window StayWindow,
	guests int,
	totalPriceCents int64,
	currency string,
	contactName string,
	contactEmail string,
) (*Booking, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if placeID == uuid.Nil {
		return nil, domain.NewValidationError("place ID is required")
	}
	if !window.StartsAfter(time.Now()) {
		return nil, domain.NewInvalidRangeError("check-in must be in the future")
	}
	if guests < 1 {
		return nil, domain.NewValidationError("guest count must be at least 1")
	}
	if totalPriceCents <= 0 {
		return nil, domain.NewValidationError("total price must be positive")
	}
	if contactName == "" {
		return nil, domain.NewValidationError("contact name is required")
	}
	if contactEmail == "" || !strings.Contains(contactEmail, "@") {
		return nil, domain.NewValidationError("a valid contact email is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		ownerID:         ownerID,
		placeID:         placeID,
		window:          window,
		guests:          guests,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		status:          StatusPending,
		paymentStatus:   PaymentUnpaid,
		contactName:     contactName,
		contactEmail:    contactEmail,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	ownerID uuid.UUID,
	placeID uuid.UUID,
	window StayWindow,
	guests int,
	totalPriceCents int64,
	currency string,
	status BookingStatus,
	paymentStatus PaymentStatus,
	contactName string,
	contactEmail string,
	cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		ownerID:         ownerID,
		placeID:         placeID,
		window:          window,
		guests:          guests,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		status:          status,
		paymentStatus:   paymentStatus,
		contactName:     contactName,
		contactEmail:    contactEmail,
		cancelledAt:     cancelledAt,
		cancelNote:      cancelNote,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// OwnerID returns the booking owner's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// PlaceID returns the booked place's ID.
func (b *Booking) PlaceID() uuid.UUID { return b.placeID }

// Window returns the stay window.
func (b *Booking) Window() StayWindow { return b.window }

// Guests returns the guest count.
func (b *Booking) Guests() int { return b.guests }

// TotalPriceCents returns the computed total price in cents.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// ContactName returns the contact name captured at booking time.
func (b *Booking) ContactName() string { return b.contactName }

// ContactEmail returns the contact email captured at booking time.
func (b *Booking) ContactEmail() string { return b.contactEmail }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the booking belongs to the given user.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.ownerID == userID
}

// IsEditable reports whether the booking may still be edited.
func (b *Booking) IsEditable() bool {
	return b.status != StatusCancelled && b.status != StatusCompleted
}

// Reschedule applies a date/guest edit with the freshly computed price.
// A cancelled or completed booking cannot be edited. If the new price differs
// from what was collected on a paid booking, payment status reverts to unpaid:
// a paid booking's price must never drift from the amount charged.
func (b *Booking) Reschedule(window StayWindow, guests int, totalPriceCents int64) error {
	if !b.IsEditable() {
		return domain.NewTerminalStateError(
			fmt.Sprintf("booking %s cannot be edited in status %s", b.bookingNumber, b.status))
	}
	if guests < 1 {
		return domain.NewValidationError("guest count must be at least 1")
	}
	if totalPriceCents <= 0 {
		return domain.NewValidationError("total price must be positive")
	}

	if totalPriceCents != b.totalPriceCents && b.paymentStatus == PaymentPaid {
		b.paymentStatus = PaymentUnpaid
	}
	b.window = window
	b.guests = guests
	b.totalPriceCents = totalPriceCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled. Permitted only strictly before
// check-in and only once; the record is retained for audit and refunds.
func (b *Booking) Cancel(reason string) error {
	if b.status == StatusCancelled {
		return domain.NewAlreadyCancelledError(
			fmt.Sprintf("booking %s is already cancelled", b.bookingNumber))
	}
	if !b.status.CanBeCancelled() {
		return domain.NewTerminalStateError(
			fmt.Sprintf("booking %s cannot be cancelled in status %s", b.bookingNumber, b.status))
	}
	if !b.window.StartsAfter(time.Now()) {
		return domain.NewTooLateToCancelError(
			fmt.Sprintf("booking %s can no longer be cancelled: stay has started", b.bookingNumber))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Complete marks the stay as concluded. Administrative transition.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkPaid records a successful payment and advances a pending booking to
// confirmed. Callers must handle the already-paid case before invoking this.
func (b *Booking) MarkPaid() error {
	if !b.paymentStatus.CanTransitionTo(PaymentPaid) {
		return domain.NewInvalidStateError(string(b.paymentStatus), string(PaymentPaid))
	}
	b.paymentStatus = PaymentPaid
	if b.status == StatusPending {
		b.status = StatusConfirmed
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded records a refund of the collected amount.
func (b *Booking) MarkRefunded() error {
	if !b.paymentStatus.CanTransitionTo(PaymentRefunded) {
		return domain.NewInvalidStateError(string(b.paymentStatus), string(PaymentRefunded))
	}
	b.paymentStatus = PaymentRefunded
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
