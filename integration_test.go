//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderstay/service-booking/internal/application"
	"github.com/wanderstay/service-booking/internal/domain"
	"github.com/wanderstay/service-booking/internal/events"
	"github.com/wanderstay/service-booking/internal/repository"
)

func futureDate(daysAhead int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAhead)
}

// TestPaymentSucceeded_ConfirmsBooking verifies the full path: a payment
// confirmation published to payment.events is consumed, the booking flips to
// paid/confirmed, a payment row is recorded, and a booking.confirmed event
// goes out on booking.events.
func TestPaymentSucceeded_ConfirmsBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupServiceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ownerID := uuid.New()
	placeID := seedPlace(t, infra.DB, uuid.New(), 10000, 4)
	dto := createBookingVia(t, stack.Bookings, ownerID, placeID, futureDate(30), futureDate(33), 2)
	require.Equal(t, "pending", dto.Status)
	require.Equal(t, "unpaid", dto.PaymentStatus)
	require.Equal(t, int64(60000), dto.TotalPriceCents)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	txnID := "pi_int_" + uuid.New().String()[:8]
	evt := events.PaymentSucceededEvent{
		ProviderTxnID: txnID,
		BookingID:     dto.ID,
		UserID:        ownerID,
		AmountCents:   60000,
		Currency:      "USD",
		ReceiptURL:    "https://pay.example.com/receipts/int",
		OccurredAt:    time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment", events.PaymentSucceeded, evt)

	model := waitForPaymentStatus(t, infra.DB, dto.ID, "paid", 15*time.Second)
	assert.Equal(t, "confirmed", model.Status)

	var payments []repository.PaymentModel
	require.NoError(t, infra.DB.Where("booking_id = ?", dto.ID).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, txnID, payments[0].ProviderTxnID)
	assert.Equal(t, "succeeded", payments[0].Status)
	assert.Equal(t, int64(60000), payments[0].AmountCents)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingConfirmed, 15*time.Second)

	var confirmed events.BookingEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, dto.ID, confirmed.BookingID)
	assert.Equal(t, "paid", confirmed.PaymentStatus)
}

// TestReconcile_DuplicateDeliveryIsNoOp verifies payment idempotency: the
// same provider transaction applied twice changes the booking exactly once
// and records exactly one payment row.
func TestReconcile_DuplicateDeliveryIsNoOp(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupServiceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := uuid.New()
	placeID := seedPlace(t, infra.DB, uuid.New(), 10000, 4)
	dto := createBookingVia(t, stack.Bookings, ownerID, placeID, futureDate(40), futureDate(42), 2)

	req := application.ReconcileRequest{
		EventType:     events.PaymentSucceeded,
		ProviderTxnID: "pi_dup_001",
		BookingID:     dto.ID,
		UserID:        ownerID,
		AmountCents:   dto.TotalPriceCents,
		Currency:      "USD",
	}

	require.NoError(t, stack.Payments.Reconcile(context.Background(), req))
	require.NoError(t, stack.Payments.Reconcile(context.Background(), req), "duplicate delivery must be a no-op, not an error")

	var model repository.BookingModel
	require.NoError(t, infra.DB.Where("id = ?", dto.ID).First(&model).Error)
	assert.Equal(t, "paid", model.PaymentStatus)
	assert.Equal(t, "confirmed", model.Status)
	assert.Equal(t, dto.Version+1, model.Version, "version must advance exactly once")

	var count int64
	require.NoError(t, infra.DB.Model(&repository.PaymentModel{}).Where("booking_id = ?", dto.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestCreateBooking_OverlapRejected verifies double-booking protection and
// the half-open range semantics that allow back-to-back stays.
func TestCreateBooking_OverlapRejected(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupServiceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	placeID := seedPlace(t, infra.DB, uuid.New(), 10000, 4)
	createBookingVia(t, stack.Bookings, uuid.New(), placeID, futureDate(10), futureDate(13), 2)

	// Overlapping window is rejected with a conflict.
	_, err := stack.Bookings.CreateBooking(context.Background(),
		testActor(uuid.New()),
		application.CreateBookingRequest{
			PlaceID:      placeID,
			CheckIn:      futureDate(12),
			CheckOut:     futureDate(15),
			Guests:       2,
			ContactName:  "Second Guest",
			ContactEmail: "second@example.com",
		})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// Back-to-back: checkout day is the next guest's check-in day.
	adjacent := createBookingVia(t, stack.Bookings, uuid.New(), placeID, futureDate(13), futureDate(16), 2)
	assert.Equal(t, "pending", adjacent.Status)

	// A cancelled booking frees its window.
	ownerID := uuid.New()
	blocked := createBookingVia(t, stack.Bookings, ownerID, placeID, futureDate(20), futureDate(23), 2)
	_, err = stack.Bookings.CancelBooking(context.Background(), testActor(ownerID), blocked.ID, "making room")
	require.NoError(t, err)

	reclaimed := createBookingVia(t, stack.Bookings, uuid.New(), placeID, futureDate(20), futureDate(23), 2)
	assert.Equal(t, "pending", reclaimed.Status)
}

// TestEditBooking_PaidEditResetsPayment verifies that a price-changing edit
// on a paid booking reverts it to unpaid and re-checks availability
// excluding the booking's own window.
func TestEditBooking_PaidEditResetsPayment(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupServiceStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := uuid.New()
	placeID := seedPlace(t, infra.DB, uuid.New(), 10000, 4)
	dto := createBookingVia(t, stack.Bookings, ownerID, placeID, futureDate(50), futureDate(53), 2)

	require.NoError(t, stack.Payments.Reconcile(context.Background(), application.ReconcileRequest{
		EventType:     events.PaymentSucceeded,
		ProviderTxnID: "pi_edit_001",
		BookingID:     dto.ID,
		UserID:        ownerID,
		AmountCents:   dto.TotalPriceCents,
		Currency:      "USD",
	}))

	// Extending the stay changes the price, so payment status resets.
	edited, err := stack.Bookings.EditBooking(context.Background(), testActor(ownerID), dto.ID, application.EditBookingRequest{
		CheckIn:  futureDate(50),
		CheckOut: futureDate(55),
		Guests:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), edited.TotalPriceCents)
	assert.Equal(t, "unpaid", edited.PaymentStatus)
	assert.Equal(t, "confirmed", edited.Status)

	// The edit overlapped its own previous window; that must not conflict.
	var model repository.BookingModel
	require.NoError(t, infra.DB.Where("id = ?", dto.ID).First(&model).Error)
	assert.Equal(t, futureDate(55), model.CheckOut.UTC())
}
