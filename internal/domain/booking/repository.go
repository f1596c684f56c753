package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
//
// CreateIfAvailable and UpdateIfAvailable fold the availability check and the
// write into one transaction: an application-level check followed by a
// separate insert would let two concurrent requests double-book a place.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByOwnerID retrieves bookings belonging to a specific owner with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// IsAvailable reports whether the window is free of non-cancelled
	// bookings for the place. excludeID, when non-nil, removes the booking
	// being edited from the conflict scan.
	IsAvailable(ctx context.Context, placeID uuid.UUID, window StayWindow, excludeID *uuid.UUID) (bool, error)

	// CreateIfAvailable atomically re-checks availability and persists the
	// new booking. Returns a ConflictError if the window is taken.
	CreateIfAvailable(ctx context.Context, booking *Booking) error

	// UpdateIfAvailable atomically re-checks availability (excluding the
	// booking's own prior reservation) and persists the edit with
	// optimistic locking.
	UpdateIfAvailable(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
