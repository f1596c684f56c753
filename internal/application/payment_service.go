package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/domain"
	bookingDomain "github.com/wanderstay/service-booking/internal/domain/booking"
	paymentDomain "github.com/wanderstay/service-booking/internal/domain/payment"
	"github.com/wanderstay/service-booking/internal/events"
	"github.com/wanderstay/service-booking/internal/kafka"
	"github.com/wanderstay/service-booking/internal/metrics"
)

// PaymentIntentDTO is handed to the frontend to complete the payment with
// the provider.
type PaymentIntentDTO struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	ProviderTxnID string    `json:"provider_txn_id"`
	ClientSecret  string    `json:"client_secret"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
}

// PaymentDTO is the response representation of a payment.
type PaymentDTO struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"booking_id"`
	UserID        uuid.UUID `json:"user_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	ProviderTxnID string    `json:"provider_txn_id"`
	ReceiptURL    string    `json:"receipt_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReconcileRequest carries a provider payment confirmation into the
// reconciliation handler. Webhook and event-stream deliveries both build one
// of these, so duplicates across transports collapse onto the same
// idempotency key.
type ReconcileRequest struct {
	EventType     string
	ProviderTxnID string
	BookingID     uuid.UUID
	UserID        uuid.UUID
	AmountCents   int64
	Currency      string
	ReceiptURL    string
}

// RevenueStatsDTO holds payment statistics for the admin dashboard.
type RevenueStatsDTO struct {
	TotalRevenueCents int64            `json:"total_revenue_cents"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// PaymentService orchestrates payment intents and reconciliation.
type PaymentService struct {
	payments   paymentDomain.PaymentRepository
	reconciler paymentDomain.Reconciler
	bookings   bookingDomain.BookingRepository
	provider   paymentDomain.Provider
	producer   *kafka.Producer
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	payments paymentDomain.PaymentRepository,
	reconciler paymentDomain.Reconciler,
	bookings bookingDomain.BookingRepository,
	provider paymentDomain.Provider,
	producer *kafka.Producer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:   payments,
		reconciler: reconciler,
		bookings:   bookings,
		provider:   provider,
		producer:   producer,
		logger:     logger,
	}
}

// CreateIntent opens a payment intent with the provider for the actor's
// booking and records a pending payment keyed by the provider transaction
// ID. The booking itself is untouched; it changes only when the provider
// confirms the charge.
func (s *PaymentService) CreateIntent(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*PaymentIntentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.UserID) {
		return nil, domain.NewAuthorizationError("booking does not belong to this user")
	}
	if bk.PaymentStatus() == bookingDomain.PaymentPaid {
		return nil, domain.NewValidationError("booking is already paid")
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewTerminalStateError(string(bk.Status()))
	}

	intent, err := s.provider.CreateIntent(ctx, paymentDomain.IntentRequest{
		BookingID:   bk.ID().String(),
		AmountCents: bk.TotalPriceCents(),
		Currency:    bk.Currency(),
	})
	if err != nil {
		return nil, err
	}

	pmt, err := paymentDomain.NewPayment(bk.ID(), actor.UserID, bk.TotalPriceCents(), bk.Currency(), intent.ProviderTxnID)
	if err != nil {
		return nil, err
	}

	if err := s.payments.Save(ctx, pmt); err != nil {
		return nil, err
	}

	return &PaymentIntentDTO{
		PaymentID:     pmt.ID(),
		ProviderTxnID: intent.ProviderTxnID,
		ClientSecret:  intent.ClientSecret,
		AmountCents:   pmt.AmountCents(),
		Currency:      pmt.Currency(),
	}, nil
}

// Reconcile applies a provider payment confirmation to the booking. The
// handler is idempotent: an already-paid booking or an already-recorded
// provider transaction makes the call a no-op, and the booking update plus
// the payment record land in one transaction.
func (s *PaymentService) Reconcile(ctx context.Context, req ReconcileRequest) error {
	if req.ProviderTxnID == "" {
		metrics.IncReconciliation("error")
		return domain.NewValidationError("provider transaction ID is required")
	}
	if req.BookingID == uuid.Nil {
		metrics.IncReconciliation("error")
		return domain.NewValidationError("booking ID is required")
	}
	if req.AmountCents <= 0 {
		metrics.IncReconciliation("error")
		return domain.NewValidationError("amount must be positive")
	}

	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		metrics.IncReconciliation("error")
		return err
	}

	if req.AmountCents != bk.TotalPriceCents() {
		s.logger.Warn("reconciled amount differs from booking total",
			zap.String("booking_id", bk.ID().String()),
			zap.String("provider_txn_id", req.ProviderTxnID),
			zap.Int64("paid_cents", req.AmountCents),
			zap.Int64("total_cents", bk.TotalPriceCents()),
		)
	}

	userID := req.UserID
	if userID == uuid.Nil {
		userID = bk.OwnerID()
	}

	result, err := s.reconciler.ReconcileSucceeded(ctx, bk.ID(), userID, req.ProviderTxnID, req.AmountCents, req.Currency, req.ReceiptURL)
	if err != nil {
		metrics.IncReconciliation("error")
		return err
	}

	if !result.Applied {
		metrics.IncReconciliation("duplicate")
		s.logger.Info("duplicate payment confirmation ignored",
			zap.String("booking_id", bk.ID().String()),
			zap.String("provider_txn_id", req.ProviderTxnID),
		)
		return nil
	}

	metrics.IncReconciliation("applied")
	s.logger.Info("payment reconciled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("provider_txn_id", req.ProviderTxnID),
		zap.Int64("amount_cents", req.AmountCents),
	)

	// Re-read for the event payload so it reflects the post-reconcile state.
	if updated, err := s.bookings.FindByID(ctx, bk.ID()); err == nil {
		bk = updated
	}
	s.publishConfirmed(ctx, bk)
	return nil
}

// RecordFailure marks a pending payment attempt failed. The booking stays
// unpaid so the guest can retry with a fresh intent.
func (s *PaymentService) RecordFailure(ctx context.Context, providerTxnID string) error {
	pmt, err := s.payments.FindByProviderTxnID(ctx, providerTxnID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			s.logger.Warn("failure event for unknown provider transaction",
				zap.String("provider_txn_id", providerTxnID),
			)
			return nil
		}
		return err
	}
	if err := pmt.MarkFailed(); err != nil {
		// Already succeeded or failed; nothing to record.
		return nil
	}
	return s.payments.Update(ctx, pmt)
}

// GetBookingPayments returns the payment history of a booking, newest first.
// Readable by the booking owner and by admins.
func (s *PaymentService) GetBookingPayments(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) ([]PaymentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, domain.NewAuthorizationError("booking does not belong to this user")
	}

	payments, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, pmt := range payments {
		dtos[i] = toPaymentDTO(pmt)
	}
	return dtos, nil
}

// RefundBooking refunds a cancelled or completed-and-disputed booking
// (admin). The booking's payment status moves to refunded and the latest
// succeeded payment is marked refunded alongside it.
func (s *PaymentService) RefundBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.MarkRefunded(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	payments, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	for _, pmt := range payments {
		if pmt.Status() != paymentDomain.StatusSucceeded {
			continue
		}
		if err := pmt.MarkRefunded(); err != nil {
			return nil, err
		}
		if err := s.payments.Update(ctx, pmt); err != nil {
			return nil, err
		}
		break
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetRevenueStats returns aggregate payment statistics (admin).
func (s *PaymentService) GetRevenueStats(ctx context.Context) (*RevenueStatsDTO, error) {
	total, byStatus, err := s.payments.GetRevenueStats(ctx)
	if err != nil {
		return nil, err
	}
	return &RevenueStatsDTO{
		TotalRevenueCents: total,
		ByStatus:          byStatus,
	}, nil
}

func toPaymentDTO(pmt *paymentDomain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            pmt.ID(),
		BookingID:     pmt.BookingID(),
		UserID:        pmt.UserID(),
		AmountCents:   pmt.AmountCents(),
		Currency:      pmt.Currency(),
		Status:        string(pmt.Status()),
		ProviderTxnID: pmt.ProviderTxnID(),
		ReceiptURL:    pmt.ReceiptURL(),
		CreatedAt:     pmt.CreatedAt(),
		UpdatedAt:     pmt.UpdatedAt(),
	}
}

func (s *PaymentService) publishConfirmed(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		OwnerID:         bk.OwnerID(),
		PlaceID:         bk.PlaceID(),
		CheckIn:         bk.Window().CheckIn,
		CheckOut:        bk.Window().CheckOut,
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		Status:          string(bk.Status()),
		PaymentStatus:   string(bk.PaymentStatus()),
		ContactName:     bk.ContactName(),
		ContactEmail:    bk.ContactEmail(),
		OccurredAt:      time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", events.BookingConfirmed, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", events.BookingConfirmed),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", events.BookingConfirmed),
			zap.Error(err),
		)
	}
}
