package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/domain/payment"
)

// MetadataBookingID is the PaymentIntent metadata key carrying our booking ID.
const MetadataBookingID = "booking_id"

// StripeGateway implements payment.Provider against Stripe PaymentIntents.
type StripeGateway struct {
	logger *zap.Logger
}

// NewStripeGateway configures the Stripe client with the given secret key.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{logger: logger}
}

// CreateIntent creates a PaymentIntent for the booking total. The booking ID
// travels in the intent metadata so the webhook can route the confirmation
// back to the right booking.
func (g *StripeGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.AddMetadata(MetadataBookingID, req.BookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return payment.Intent{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Info("payment intent created",
		zap.String("booking_id", req.BookingID),
		zap.String("intent_id", pi.ID),
	)

	return payment.Intent{
		ProviderTxnID: pi.ID,
		ClientSecret:  pi.ClientSecret,
	}, nil
}
