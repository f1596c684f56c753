package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderstay/service-booking/internal/domain"
)

func TestStandardPricingStrategy_Quote(t *testing.T) {
	strategy := NewStandardPricingStrategy()

	// 3 nights at $100/night for 2 guests = $600.
	total, err := strategy.Quote(PricingParams{
		NightlyRateCents: 10000,
		Window:           mustWindow(t, day(2026, 9, 10), day(2026, 9, 13)),
		Guests:           2,
		MaxGuests:        4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), total)
}

func TestStandardPricingStrategy_SingleNightSingleGuest(t *testing.T) {
	strategy := NewStandardPricingStrategy()

	total, err := strategy.Quote(PricingParams{
		NightlyRateCents: 8550,
		Window:           mustWindow(t, day(2026, 9, 10), day(2026, 9, 11)),
		Guests:           1,
		MaxGuests:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8550), total)
}

func TestStandardPricingStrategy_RejectsOverCapacity(t *testing.T) {
	strategy := NewStandardPricingStrategy()

	_, err := strategy.Quote(PricingParams{
		NightlyRateCents: 10000,
		Window:           mustWindow(t, day(2026, 9, 10), day(2026, 9, 13)),
		Guests:           5,
		MaxGuests:        4,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindCapacity))
}

func TestStandardPricingStrategy_RejectsBadInputs(t *testing.T) {
	strategy := NewStandardPricingStrategy()
	window := mustWindow(t, day(2026, 9, 10), day(2026, 9, 13))

	_, err := strategy.Quote(PricingParams{
		NightlyRateCents: 10000,
		Window:           window,
		Guests:           0,
		MaxGuests:        4,
	})
	assert.True(t, domain.IsKind(err, domain.KindCapacity))

	_, err = strategy.Quote(PricingParams{
		NightlyRateCents: 0,
		Window:           window,
		Guests:           2,
		MaxGuests:        4,
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
