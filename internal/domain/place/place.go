package place

import (
	"time"

	"github.com/google/uuid"
	"github.com/wanderstay/service-booking/internal/domain"
)

// PlaceStatus represents the lifecycle state of a listing.
type PlaceStatus string

const (
	PlaceStatusActive   PlaceStatus = "active"
	PlaceStatusArchived PlaceStatus = "archived"
)

// Place is the aggregate root for a rental listing. The booking core treats
// it as read-only: it only consumes the nightly rate and the guest capacity.
type Place struct {
	id               uuid.UUID
	hostID           uuid.UUID
	title            string
	description      string
	address          string
	city             string
	country          string
	nightlyRateCents int64
	currency         string
	maxGuests        int
	status           PlaceStatus
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewPlace creates a new active listing with validated fields.
func NewPlace(
	hostID uuid.UUID,
	title, description, address, city, country string,
	nightlyRateCents int64,
	currency string,
	maxGuests int,
) (*Place, error) {
	if hostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if nightlyRateCents <= 0 {
		return nil, domain.NewValidationError("nightly rate must be positive")
	}
	if maxGuests < 1 {
		return nil, domain.NewValidationError("max guests must be at least 1")
	}

	now := time.Now().UTC()
	return &Place{
		id:               uuid.New(),
		hostID:           hostID,
		title:            title,
		description:      description,
		address:          address,
		city:             city,
		country:          country,
		nightlyRateCents: nightlyRateCents,
		currency:         currency,
		maxGuests:        maxGuests,
		status:           PlaceStatusActive,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Place from persistence data (no validation).
func Reconstruct(
	id, hostID uuid.UUID,
	title, description, address, city, country string,
	nightlyRateCents int64,
	currency string,
	maxGuests int,
	status PlaceStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Place {
	return &Place{
		id:               id,
		hostID:           hostID,
		title:            title,
		description:      description,
		address:          address,
		city:             city,
		country:          country,
		nightlyRateCents: nightlyRateCents,
		currency:         currency,
		maxGuests:        maxGuests,
		status:           status,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (p *Place) ID() uuid.UUID           { return p.id }
func (p *Place) HostID() uuid.UUID       { return p.hostID }
func (p *Place) Title() string           { return p.title }
func (p *Place) Description() string     { return p.description }
func (p *Place) Address() string         { return p.address }
func (p *Place) City() string            { return p.city }
func (p *Place) Country() string         { return p.country }
func (p *Place) NightlyRateCents() int64 { return p.nightlyRateCents }
func (p *Place) Currency() string        { return p.currency }
func (p *Place) MaxGuests() int          { return p.maxGuests }
func (p *Place) Status() PlaceStatus     { return p.status }
func (p *Place) Version() int64          { return p.version }
func (p *Place) CreatedAt() time.Time    { return p.createdAt }
func (p *Place) UpdatedAt() time.Time    { return p.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the listing belongs to the given host.
func (p *Place) IsOwnedBy(hostID uuid.UUID) bool {
	return p.hostID == hostID
}

// IsActive returns true if the listing accepts bookings.
func (p *Place) IsActive() bool {
	return p.status == PlaceStatusActive
}

// Update applies partial updates to the listing.
func (p *Place) Update(
	title, description, address, city, country string,
	nightlyRateCents int64,
	maxGuests int,
) {
	if title != "" {
		p.title = title
	}
	if description != "" {
		p.description = description
	}
	if address != "" {
		p.address = address
	}
	if city != "" {
		p.city = city
	}
	if country != "" {
		p.country = country
	}
	if nightlyRateCents > 0 {
		p.nightlyRateCents = nightlyRateCents
	}
	if maxGuests > 0 {
		p.maxGuests = maxGuests
	}
	p.version++
	p.updatedAt = time.Now().UTC()
}

// Archive takes the listing off the market. Existing bookings are unaffected.
func (p *Place) Archive() {
	p.status = PlaceStatusArchived
	p.version++
	p.updatedAt = time.Now().UTC()
}
