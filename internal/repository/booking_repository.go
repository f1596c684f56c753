package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanderstay/service-booking/internal/domain"
	bookingDomain "github.com/wanderstay/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber   string     `gorm:"uniqueIndex;not null;size:20"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	PlaceID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckIn         time.Time  `gorm:"not null;index"`
	CheckOut        time.Time  `gorm:"not null"`
	Guests          int        `gorm:"not null"`
	TotalPriceCents int64      `gorm:"not null"`
	Currency        string     `gorm:"not null;size:3;default:'USD'"`
	Status          string     `gorm:"not null;size:20;index"`
	PaymentStatus   string     `gorm:"not null;size:20;index"`
	ContactName     string     `gorm:"not null;size:200"`
	ContactEmail    string     `gorm:"not null;size:320"`
	CancelledAt     *time.Time `gorm:""`
	CancelNote      string     `gorm:"size:500"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByOwnerID retrieves bookings for a specific owner with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// overlapScope narrows a query to non-cancelled bookings of the place whose
// half-open [check_in, check_out) window overlaps the given one. Back-to-back
// windows do not match.
func overlapScope(tx *gorm.DB, placeID uuid.UUID, window bookingDomain.StayWindow, excludeID *uuid.UUID) *gorm.DB {
	q := tx.Model(&BookingModel{}).
		Where("place_id = ?", placeID).
		Where("status <> ?", string(bookingDomain.StatusCancelled)).
		Where("check_in < ? AND check_out > ?", window.CheckOut, window.CheckIn)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	return q
}

// IsAvailable reports whether the window is free for the place.
func (r *GormBookingRepository) IsAvailable(ctx context.Context, placeID uuid.UUID, window bookingDomain.StayWindow, excludeID *uuid.UUID) (bool, error) {
	var count int64
	if err := overlapScope(r.db.WithContext(ctx), placeID, window, excludeID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return count == 0, nil
}

// CreateIfAvailable re-checks availability and inserts the booking in one
// transaction. Conflicting rows are locked for the duration of the check so a
// concurrent edit cannot slip in between; the database exclusion constraint
// on (place_id, stay range) catches the remaining insert/insert race.
func (r *GormBookingRepository) CreateIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conflicts []BookingModel
		if err := overlapScope(tx.Clauses(clause.Locking{Strength: "UPDATE"}), bk.PlaceID(), bk.Window(), nil).
			Find(&conflicts).Error; err != nil {
			return fmt.Errorf("failed to scan for conflicts: %w", err)
		}
		if len(conflicts) > 0 {
			return domain.NewConflictError("the requested dates are no longer available")
		}
		if err := tx.Create(model).Error; err != nil {
			if isExclusionViolation(err) {
				return domain.NewConflictError("the requested dates are no longer available")
			}
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	return err
}

// UpdateIfAvailable re-checks availability excluding the booking's own prior
// reservation and persists the edit with optimistic locking, all in one
// transaction.
func (r *GormBookingRepository) UpdateIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	id := bk.ID()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conflicts []BookingModel
		if err := overlapScope(tx.Clauses(clause.Locking{Strength: "UPDATE"}), bk.PlaceID(), bk.Window(), &id).
			Find(&conflicts).Error; err != nil {
			return fmt.Errorf("failed to scan for conflicts: %w", err)
		}
		if len(conflicts) > 0 {
			return domain.NewConflictError("the requested dates are no longer available")
		}
		if err := updateModel(tx, bk); err != nil {
			if isExclusionViolation(err) {
				return domain.NewConflictError("the requested dates are no longer available")
			}
			return err
		}
		return nil
	})
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return updateModel(r.db.WithContext(ctx), bk)
}

func updateModel(tx *gorm.DB, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before persisting).
	expectedVersion := bk.Version() - 1
	result := tx.
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"check_in":          model.CheckIn,
			"check_out":         model.CheckOut,
			"guests":            model.Guests,
			"total_price_cents": model.TotalPriceCents,
			"currency":          model.Currency,
			"status":            model.Status,
			"payment_status":    model.PaymentStatus,
			"contact_name":      model.ContactName,
			"contact_email":     model.ContactEmail,
			"cancelled_at":      model.CancelledAt,
			"cancel_note":       model.CancelNote,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// isExclusionViolation reports whether err is a PostgreSQL exclusion or
// unique constraint violation.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" || pgErr.Code == "23505"
	}
	return false
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
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
		CancelledAt:     bk.CancelledAt(),
		CancelNote:      bk.CancelNote(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	window := bookingDomain.StayWindow{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.OwnerID,
		m.PlaceID,
		window,
		m.Guests,
		m.TotalPriceCents,
		m.Currency,
		status,
		paymentStatus,
		m.ContactName,
		m.ContactEmail,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
