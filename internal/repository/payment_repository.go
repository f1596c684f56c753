package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanderstay/service-booking/internal/domain"
	bookingDomain "github.com/wanderstay/service-booking/internal/domain/booking"
	paymentDomain "github.com/wanderstay/service-booking/internal/domain/payment"
)

// PaymentModel is the GORM model for the payments table. The unique index on
// ProviderTxnID is the persistence-level idempotency guarantee: at most one
// payment row per provider transaction, no matter how often the provider
// redelivers.
type PaymentModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID     uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	AmountCents   int64     `gorm:"not null"`
	Currency      string    `gorm:"not null;size:3;default:'USD'"`
	Status        string    `gorm:"not null;size:20;index"`
	ProviderTxnID string    `gorm:"uniqueIndex;not null;size:255"`
	ReceiptURL    string    `gorm:"size:500"`
	Version       int64     `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of PaymentRepository
// and the transactional Reconciler.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toDomainPayment(&model)
}

// FindByBookingID retrieves all payments recorded against a booking, newest first.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*paymentDomain.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking payments: %w", err)
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i, m := range models {
		p, err := toDomainPayment(&m)
		if err != nil {
			return nil, err
		}
		payments[i] = p
	}
	return payments, nil
}

// FindByProviderTxnID retrieves a payment by its provider transaction ID.
func (r *GormPaymentRepository) FindByProviderTxnID(ctx context.Context, providerTxnID string) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("provider_txn_id = ?", providerTxnID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", providerTxnID)
		}
		return nil, fmt.Errorf("failed to find payment by provider txn: %w", err)
	}
	return toDomainPayment(&model)
}

// GetRevenueStats returns total succeeded revenue and counts by status (admin).
func (r *GormPaymentRepository) GetRevenueStats(ctx context.Context) (int64, map[string]int64, error) {
	var totalRevenue int64
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Where("status = ?", string(paymentDomain.StatusSucceeded)).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return totalRevenue, counts, nil
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	if err := r.db.WithContext(ctx).Create(toPaymentModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Update persists changes to an existing payment with optimistic locking.
func (r *GormPaymentRepository) Update(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	expectedVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"receipt_url": model.ReceiptURL,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("payment was modified by another transaction")
	}
	return nil
}

// ReconcileSucceeded applies a successful provider notification: the booking
// is marked paid (and confirmed if still pending) and the payment recorded,
// in a single transaction. The conditional update on payment_status is the
// atomic check-and-set: of two concurrent notifications for one booking at
// most one sees RowsAffected > 0. Duplicate deliveries return Applied=false
// without touching state.
func (r *GormPaymentRepository) ReconcileSucceeded(
	ctx context.Context,
	bookingID, userID uuid.UUID,
	providerTxnID string,
	amountCents int64,
	currency, receiptURL string,
) (paymentDomain.ReconcileResult, error) {
	var result paymentDomain.ReconcileResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A succeeded or refunded row for this provider transaction means
		// this delivery was already processed.
		var existing PaymentModel
		findErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("provider_txn_id = ?", providerTxnID).
			First(&existing).Error
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up provider transaction: %w", findErr)
		}
		if findErr == nil && existing.Status != string(paymentDomain.StatusPending) {
			return nil // duplicate delivery, Applied stays false
		}

		// Conditional check-and-set on the booking.
		now := time.Now().UTC()
		res := tx.Model(&BookingModel{}).
			Where("id = ? AND payment_status = ?", bookingID, string(bookingDomain.PaymentUnpaid)).
			Where("status NOT IN ?", []string{
				string(bookingDomain.StatusCancelled),
				string(bookingDomain.StatusCompleted),
			}).
			Updates(map[string]interface{}{
				"payment_status": string(bookingDomain.PaymentPaid),
				"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
					string(bookingDomain.StatusPending), string(bookingDomain.StatusConfirmed)),
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark booking paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&BookingModel{}).Where("id = ?", bookingID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up booking: %w", err)
			}
			if count == 0 {
				return domain.NewNotFoundError("Booking", bookingID.String())
			}
			return nil // already paid or terminal, Applied stays false
		}

		// Record the payment: flip the intent's pending row when present,
		// otherwise insert a fresh succeeded row.
		if findErr == nil {
			res := tx.Model(&PaymentModel{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"status":      string(paymentDomain.StatusSucceeded),
					"receipt_url": receiptURL,
					"version":     gorm.Expr("version + 1"),
					"updated_at":  now,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update payment: %w", res.Error)
			}
			existing.Status = string(paymentDomain.StatusSucceeded)
			existing.ReceiptURL = receiptURL
			existing.Version++
			existing.UpdatedAt = now
			p, err := toDomainPayment(&existing)
			if err != nil {
				return err
			}
			result.Applied = true
			result.Payment = p
			return nil
		}

		p := paymentDomain.Reconstruct(
			uuid.New(), bookingID, userID,
			amountCents, currency,
			paymentDomain.StatusSucceeded,
			providerTxnID, receiptURL,
			1, now, now,
		)
		if err := tx.Create(toPaymentModel(p)).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		result.Applied = true
		result.Payment = p
		return nil
	})
	if err != nil {
		return paymentDomain.ReconcileResult{}, err
	}
	return result, nil
}

// --- Conversion Helpers ---

func toPaymentModel(p *paymentDomain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		UserID:        p.UserID(),
		AmountCents:   p.AmountCents(),
		Currency:      p.Currency(),
		Status:        string(p.Status()),
		ProviderTxnID: p.ProviderTxnID(),
		ReceiptURL:    p.ReceiptURL(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toDomainPayment(m *PaymentModel) (*paymentDomain.Payment, error) {
	status, err := paymentDomain.ParsePaymentStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return paymentDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.UserID,
		m.AmountCents,
		m.Currency,
		status,
		m.ProviderTxnID,
		m.ReceiptURL,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
