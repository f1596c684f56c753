package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics used by the booking service.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types emitted on TopicBookingEvents. The notification
// service subscribes to these to send guest and host emails, so publication
// doubles as the booking-confirmation dispatch. Delivery is best-effort:
// a failed publish never rolls back the booking transition.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Payment event types consumed from TopicPaymentEvents.
const (
	PaymentSucceeded = "payment.succeeded"
)

// BookingEvent is the payload for all booking lifecycle events.
type BookingEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	OwnerID         uuid.UUID `json:"owner_id"`
	PlaceID         uuid.UUID `json:"place_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	ContactName     string    `json:"contact_name"`
	ContactEmail    string    `json:"contact_email"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is the payload of a provider payment confirmation
// arriving over the event stream. It carries the same fields as the webhook
// so both paths feed one reconciliation entry point.
type PaymentSucceededEvent struct {
	ProviderTxnID string    `json:"provider_txn_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	UserID        uuid.UUID `json:"user_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	ReceiptURL    string    `json:"receipt_url,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
