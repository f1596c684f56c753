package payment

import "context"

// IntentRequest holds the inputs for creating a payment intent with the provider.
type IntentRequest struct {
	BookingID   string
	AmountCents int64
	Currency    string
}

// Intent is the provider's handle for a created payment intent.
type Intent struct {
	// ProviderTxnID is the provider-side transaction identifier, used as
	// the idempotency key during reconciliation.
	ProviderTxnID string

	// ClientSecret is handed to the frontend to complete the payment.
	ClientSecret string
}

// Provider abstracts the external payment provider. Implementations live at
// the infrastructure edge; the domain never talks to the provider directly.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
}
