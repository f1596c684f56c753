package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderstay/service-booking/internal/domain"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	pmt, err := NewPayment(uuid.New(), uuid.New(), 60000, "USD", "pi_test_123")
	require.NoError(t, err)
	return pmt
}

func TestNewPayment(t *testing.T) {
	pmt := newTestPayment(t)

	assert.Equal(t, StatusPending, pmt.Status())
	assert.Equal(t, int64(60000), pmt.AmountCents())
	assert.Equal(t, "pi_test_123", pmt.ProviderTxnID())
	assert.Equal(t, int64(1), pmt.Version())
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment(uuid.Nil, uuid.New(), 60000, "USD", "pi_test")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPayment(uuid.New(), uuid.Nil, 60000, "USD", "pi_test")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPayment(uuid.New(), uuid.New(), 0, "USD", "pi_test")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPayment(uuid.New(), uuid.New(), 60000, "USD", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestPayment_Lifecycle(t *testing.T) {
	pmt := newTestPayment(t)

	require.NoError(t, pmt.MarkSucceeded("https://pay.example.com/receipts/abc"))
	assert.Equal(t, StatusSucceeded, pmt.Status())
	assert.Equal(t, "https://pay.example.com/receipts/abc", pmt.ReceiptURL())

	// A succeeded payment cannot succeed or fail again.
	assert.Error(t, pmt.MarkSucceeded("other"))
	assert.Error(t, pmt.MarkFailed())

	require.NoError(t, pmt.MarkRefunded())
	assert.Equal(t, StatusRefunded, pmt.Status())
	assert.Error(t, pmt.MarkRefunded())
}

func TestPayment_FailedIsTerminal(t *testing.T) {
	pmt := newTestPayment(t)
	require.NoError(t, pmt.MarkFailed())

	assert.Error(t, pmt.MarkSucceeded(""))
	assert.Error(t, pmt.MarkRefunded())
}
