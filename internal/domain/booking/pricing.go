package booking

import (
	"fmt"

	"github.com/wanderstay/service-booking/internal/domain"
)

// PricingStrategy defines the interface for calculating a stay's total price.
type PricingStrategy interface {
	// Quote returns the total price in cents for the given parameters.
	Quote(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	NightlyRateCents int64
	Window           StayWindow
	Guests           int
	MaxGuests        int
}

// StandardPricingStrategy implements the platform's default pricing rule:
// total = nights * nightly rate * guests, at calendar-day granularity.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Quote computes the total price in cents.
func (s *StandardPricingStrategy) Quote(params PricingParams) (int64, error) {
	nights := params.Window.Nights()
	if nights < 1 {
		return 0, domain.NewInvalidRangeError("stay must cover at least one night")
	}
	if params.Guests < 1 {
		return 0, domain.NewCapacityError("guest count must be at least 1")
	}
	if params.MaxGuests > 0 && params.Guests > params.MaxGuests {
		return 0, domain.NewCapacityError(
			fmt.Sprintf("guest count %d exceeds place capacity %d", params.Guests, params.MaxGuests))
	}
	if params.NightlyRateCents <= 0 {
		return 0, domain.NewValidationError("nightly rate must be positive")
	}

	return int64(nights) * params.NightlyRateCents * int64(params.Guests), nil
}
