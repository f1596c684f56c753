package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/domain"
	bookingDomain "github.com/wanderstay/service-booking/internal/domain/booking"
	placeDomain "github.com/wanderstay/service-booking/internal/domain/place"
	"github.com/wanderstay/service-booking/internal/events"
	"github.com/wanderstay/service-booking/internal/kafka"
	"github.com/wanderstay/service-booking/internal/metrics"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	PlaceID      uuid.UUID `json:"place_id" binding:"required"`
	CheckIn      time.Time `json:"check_in" binding:"required"`
	CheckOut     time.Time `json:"check_out" binding:"required"`
	Guests       int       `json:"guests" binding:"required"`
	ContactName  string    `json:"contact_name" binding:"required"`
	ContactEmail string    `json:"contact_email" binding:"required,email"`
}

// EditBookingRequest holds a date/guest change for an existing booking.
type EditBookingRequest struct {
	CheckIn  time.Time `json:"check_in" binding:"required"`
	CheckOut time.Time `json:"check_out" binding:"required"`
	Guests   int       `json:"guests" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingNumber   string     `json:"booking_number"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	PlaceID         uuid.UUID  `json:"place_id"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        time.Time  `json:"check_out"`
	Nights          int        `json:"nights"`
	Guests          int        `json:"guests"`
	TotalPriceCents int64      `json:"total_price_cents"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	ContactName     string     `json:"contact_name"`
	ContactEmail    string     `json:"contact_email"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelNote      string     `json:"cancel_note,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
// Every operation takes the authenticated actor explicitly; the service never
// reads identity from ambient state.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	places   placeDomain.PlaceRepository
	pricing  bookingDomain.PricingStrategy
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	places placeDomain.PlaceRepository,
	pricing bookingDomain.PricingStrategy,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		places:   places,
		pricing:  pricing,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking validates availability and price, then persists a new pending
// booking for the actor. The availability check and the insert run in one
// data-layer transaction.
func (s *BookingService) CreateBooking(ctx context.Context, actor auth.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	pl, err := s.places.FindByID(ctx, req.PlaceID)
	if err != nil {
		return nil, err
	}
	if !pl.IsActive() {
		return nil, domain.NewValidationError("place is not accepting bookings")
	}

	window, err := bookingDomain.NewStayWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	priceCents, err := s.pricing.Quote(bookingDomain.PricingParams{
		NightlyRateCents: pl.NightlyRateCents(),
		Window:           window,
		Guests:           req.Guests,
		MaxGuests:        pl.MaxGuests(),
	})
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		actor.UserID,
		pl.ID(),
		window,
		req.Guests,
		priceCents,
		pl.Currency(),
		req.ContactName,
		req.ContactEmail,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateIfAvailable(ctx, bk); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingCreated, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking. Readable by its owner and by admins.
func (s *BookingService) GetBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, domain.NewAuthorizationError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a booking by its human-facing number.
// Readable by its owner and by admins.
func (s *BookingService) GetBookingByNumber(ctx context.Context, actor auth.Actor, number string) (*BookingDTO, error) {
	bk, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, domain.NewAuthorizationError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetOwnBookings retrieves paginated bookings for the actor.
func (s *BookingService) GetOwnBookings(ctx context.Context, actor auth.Actor, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByOwnerID(ctx, actor.UserID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// EditBooking applies a date/guest change. Only the owning user may edit, and
// only while the booking is not in a terminal status. Availability is
// re-checked excluding the booking's own reservation; the price is recomputed
// and, when it changed on a paid booking, payment status reverts to unpaid.
func (s *BookingService) EditBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID, req EditBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.UserID) {
		return nil, domain.NewAuthorizationError("booking does not belong to this user")
	}

	pl, err := s.places.FindByID(ctx, bk.PlaceID())
	if err != nil {
		return nil, err
	}

	window, err := bookingDomain.NewStayWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	priceCents, err := s.pricing.Quote(bookingDomain.PricingParams{
		NightlyRateCents: pl.NightlyRateCents(),
		Window:           window,
		Guests:           req.Guests,
		MaxGuests:        pl.MaxGuests(),
	})
	if err != nil {
		return nil, err
	}

	if err := bk.Reschedule(window, req.Guests, priceCents); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.UpdateIfAvailable(ctx, bk); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingUpdated, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels the actor's booking. Permitted only strictly before
// check-in; the record is retained for audit and refunds.
func (s *BookingService) CancelBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.UserID) {
		return nil, domain.NewAuthorizationError("booking does not belong to this user")
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingCancelled, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking marks the stay as concluded. Administrative transition, not
// user-initiated.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingCompleted, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CheckAvailability reports whether the window is free for the place.
func (s *BookingService) CheckAvailability(ctx context.Context, placeID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	if _, err := s.places.FindByID(ctx, placeID); err != nil {
		return false, err
	}
	window, err := bookingDomain.NewStayWindow(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return s.repo.IsAvailable(ctx, placeID, window, nil)
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		OwnerID:         bk.OwnerID(),
		PlaceID:         bk.PlaceID(),
		CheckIn:         bk.Window().CheckIn,
		CheckOut:        bk.Window().CheckOut,
		Nights:          bk.Window().Nights(),
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

// publishBookingEvent emits a booking lifecycle event, best-effort. The
// notification service turns these into guest/host emails; a publish failure
// is logged and never fails the booking operation.
func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
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

	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
