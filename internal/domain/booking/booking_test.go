package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderstay/service-booking/internal/domain"
)

func futureWindow(t *testing.T, nights int) StayWindow {
	t.Helper()
	checkIn := NormalizeDate(time.Now()).AddDate(0, 0, 30)
	return mustWindow(t, checkIn, checkIn.AddDate(0, 0, nights))
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(),
		uuid.New(),
		futureWindow(t, 3),
		2,
		60000,
		"USD",
		"Ada Lovelace",
		"ada@example.com",
	)
	require.NoError(t, err)
	return bk
}

func TestNewBooking_Defaults(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, PaymentUnpaid, bk.PaymentStatus())
	assert.Equal(t, int64(1), bk.Version())
	assert.True(t, strings.HasPrefix(bk.BookingNumber(), "BK-"))
	assert.Len(t, bk.BookingNumber(), 9)
	assert.Nil(t, bk.CancelledAt())
}

func TestNewBooking_RejectsCheckInTodayOrPast(t *testing.T) {
	today := NormalizeDate(time.Now())

	for _, checkIn := range []time.Time{today, today.AddDate(0, 0, -1)} {
		window := mustWindow(t, checkIn, checkIn.AddDate(0, 0, 2))
		_, err := NewBooking(uuid.New(), uuid.New(), window, 2, 60000, "USD", "Ada", "ada@example.com")
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindInvalidRange))
	}
}

func TestNewBooking_Validation(t *testing.T) {
	window := futureWindow(t, 3)

	tests := []struct {
		name string
		run  func() error
	}{
		{"nil owner", func() error {
			_, err := NewBooking(uuid.Nil, uuid.New(), window, 2, 60000, "USD", "Ada", "ada@example.com")
			return err
		}},
		{"nil place", func() error {
			_, err := NewBooking(uuid.New(), uuid.Nil, window, 2, 60000, "USD", "Ada", "ada@example.com")
			return err
		}},
		{"zero guests", func() error {
			_, err := NewBooking(uuid.New(), uuid.New(), window, 0, 60000, "USD", "Ada", "ada@example.com")
			return err
		}},
		{"zero price", func() error {
			_, err := NewBooking(uuid.New(), uuid.New(), window, 2, 0, "USD", "Ada", "ada@example.com")
			return err
		}},
		{"missing contact name", func() error {
			_, err := NewBooking(uuid.New(), uuid.New(), window, 2, 60000, "USD", "", "ada@example.com")
			return err
		}},
		{"bad email", func() error {
			_, err := NewBooking(uuid.New(), uuid.New(), window, 2, 60000, "USD", "Ada", "not-an-email")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
		})
	}
}

func TestBooking_Reschedule(t *testing.T) {
	bk := newTestBooking(t)

	newWindow := futureWindow(t, 5)
	require.NoError(t, bk.Reschedule(newWindow, 3, 150000))

	assert.Equal(t, newWindow, bk.Window())
	assert.Equal(t, 3, bk.Guests())
	assert.Equal(t, int64(150000), bk.TotalPriceCents())
	assert.Equal(t, PaymentUnpaid, bk.PaymentStatus())
}

func TestBooking_Reschedule_PriceChangeResetsPaid(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.MarkPaid())
	require.Equal(t, PaymentPaid, bk.PaymentStatus())
	require.Equal(t, StatusConfirmed, bk.Status())

	require.NoError(t, bk.Reschedule(futureWindow(t, 5), 2, 100000))

	assert.Equal(t, PaymentUnpaid, bk.PaymentStatus())
	// The booking keeps its confirmed status; only the payment axis resets.
	assert.Equal(t, StatusConfirmed, bk.Status())
}

func TestBooking_Reschedule_SamePriceKeepsPaid(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.MarkPaid())

	// Re-submit with an unchanged total.
	require.NoError(t, bk.Reschedule(futureWindow(t, 3), 2, bk.TotalPriceCents()))

	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
}

func TestBooking_Reschedule_TerminalStatesRejected(t *testing.T) {
	cancelled := newTestBooking(t)
	require.NoError(t, cancelled.Cancel("plans changed"))
	err := cancelled.Reschedule(futureWindow(t, 5), 2, 100000)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTerminalState))

	completed := newTestBooking(t)
	require.NoError(t, completed.Complete())
	err = completed.Reschedule(futureWindow(t, 5), 2, 100000)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTerminalState))
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("plans changed"))

	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "plans changed", bk.CancelNote())
	require.NotNil(t, bk.CancelledAt())
	assert.WithinDuration(t, time.Now().UTC(), *bk.CancelledAt(), 5*time.Second)
}

func TestBooking_Cancel_Twice(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Cancel("first"))

	err := bk.Cancel("second")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAlreadyCancelled))
	assert.Equal(t, "first", bk.CancelNote())
}

func TestBooking_Cancel_AfterCheckIn(t *testing.T) {
	// Rehydrate a booking whose stay started yesterday; Cancel must refuse.
	checkIn := NormalizeDate(time.Now()).AddDate(0, 0, -1)
	window := mustWindow(t, checkIn, checkIn.AddDate(0, 0, 3))
	now := time.Now().UTC()
	bk := Reconstruct(
		uuid.New(), "BK-TEST01", uuid.New(), uuid.New(),
		window, 2, 60000, "USD",
		StatusConfirmed, PaymentPaid,
		"Ada", "ada@example.com",
		nil, "", 2, now, now,
	)

	err := bk.Cancel("too late")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTooLateToCancel))
	assert.Equal(t, StatusConfirmed, bk.Status())
}

func TestBooking_Cancel_CompletedRejected(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Complete())

	err := bk.Cancel("no longer possible")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTerminalState))
}

func TestBooking_MarkPaid(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.MarkPaid())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Equal(t, StatusConfirmed, bk.Status())

	// Paying twice is an invalid transition; the reconciliation layer treats
	// it as a duplicate before ever reaching the aggregate.
	err := bk.MarkPaid()
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))
}

func TestBooking_MarkRefunded(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.MarkRefunded()
	require.Error(t, err, "an unpaid booking has nothing to refund")

	require.NoError(t, bk.MarkPaid())
	require.NoError(t, bk.MarkRefunded())
	assert.Equal(t, PaymentRefunded, bk.PaymentStatus())
}

func TestBooking_IsOwnedBy(t *testing.T) {
	ownerID := uuid.New()
	bk, err := NewBooking(ownerID, uuid.New(), futureWindow(t, 2), 1, 20000, "USD", "Ada", "ada@example.com")
	require.NoError(t, err)

	assert.True(t, bk.IsOwnedBy(ownerID))
	assert.False(t, bk.IsOwnedBy(uuid.New()))
}
