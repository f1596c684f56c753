package booking

import "fmt"

// PaymentStatus tracks how much of the booking's total has been collected.
// It is a second axis next to BookingStatus: a confirmed booking may still be
// unpaid after an edit changed its price.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid:   {PaymentPaid},
	PaymentPaid:     {PaymentUnpaid, PaymentRefunded},
	PaymentRefunded: {},
}

// IsValid returns true if the payment status is recognized.
func (s PaymentStatus) IsValid() bool {
	_, exists := validPaymentTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this payment status to the target is allowed.
// The paid -> unpaid transition exists for price-changing edits: a paid booking
// whose total changed is no longer covered by the collected amount.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	allowed, exists := validPaymentTransitions[s]
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

// String returns the string representation of the payment status.
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
