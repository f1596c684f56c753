package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/domain"
	placeDomain "github.com/wanderstay/service-booking/internal/domain/place"
)

// CreatePlaceRequest holds the data needed to publish a new listing.
type CreatePlaceRequest struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description"`
	Address          string `json:"address" binding:"required"`
	City             string `json:"city" binding:"required"`
	Country          string `json:"country" binding:"required"`
	NightlyRateCents int64  `json:"nightly_rate_cents" binding:"required"`
	Currency         string `json:"currency" binding:"required"`
	MaxGuests        int    `json:"max_guests" binding:"required"`
}

// UpdatePlaceRequest holds a partial update to a listing. Zero values leave
// the field unchanged.
type UpdatePlaceRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Address          string `json:"address"`
	City             string `json:"city"`
	Country          string `json:"country"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	MaxGuests        int    `json:"max_guests"`
}

// PlaceDTO is the response representation of a listing.
type PlaceDTO struct {
	ID               uuid.UUID `json:"id"`
	HostID           uuid.UUID `json:"host_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	Country          string    `json:"country"`
	NightlyRateCents int64     `json:"nightly_rate_cents"`
	Currency         string    `json:"currency"`
	MaxGuests        int       `json:"max_guests"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PlaceService is the application service for listing management.
type PlaceService struct {
	repo   placeDomain.PlaceRepository
	logger *zap.Logger
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(repo placeDomain.PlaceRepository, logger *zap.Logger) *PlaceService {
	return &PlaceService{repo: repo, logger: logger}
}

// CreatePlace publishes a new listing owned by the actor.
func (s *PlaceService) CreatePlace(ctx context.Context, actor auth.Actor, req CreatePlaceRequest) (*PlaceDTO, error) {
	pl, err := placeDomain.NewPlace(
		actor.UserID,
		req.Title,
		req.Description,
		req.Address,
		req.City,
		req.Country,
		req.NightlyRateCents,
		req.Currency,
		req.MaxGuests,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, err
	}

	result := toPlaceDTO(pl)
	return &result, nil
}

// GetPlace retrieves a single listing. Listings are public.
func (s *PlaceService) GetPlace(ctx context.Context, placeID uuid.UUID) (*PlaceDTO, error) {
	pl, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	result := toPlaceDTO(pl)
	return &result, nil
}

// ListPlaces returns a paginated list of active listings.
func (s *PlaceService) ListPlaces(ctx context.Context, page, limit int) (*domain.PaginatedResult[PlaceDTO], error) {
	places, total, err := s.repo.ListActive(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]PlaceDTO, len(places))
	for i, pl := range places {
		dtos[i] = toPlaceDTO(pl)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListHostPlaces returns all listings owned by the actor.
func (s *PlaceService) ListHostPlaces(ctx context.Context, actor auth.Actor) ([]PlaceDTO, error) {
	places, err := s.repo.FindByHostID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PlaceDTO, len(places))
	for i, pl := range places {
		dtos[i] = toPlaceDTO(pl)
	}
	return dtos, nil
}

// UpdatePlace applies a partial update. Only the hosting user may update.
// Rate changes affect future quotes only; existing bookings keep the total
// they were priced at.
func (s *PlaceService) UpdatePlace(ctx context.Context, actor auth.Actor, placeID uuid.UUID, req UpdatePlaceRequest) (*PlaceDTO, error) {
	pl, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !pl.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, domain.NewAuthorizationError("place does not belong to this host")
	}

	pl.Update(
		req.Title,
		req.Description,
		req.Address,
		req.City,
		req.Country,
		req.NightlyRateCents,
		req.MaxGuests,
	)

	if err := s.repo.Update(ctx, pl); err != nil {
		return nil, err
	}

	result := toPlaceDTO(pl)
	return &result, nil
}

// ArchivePlace takes the listing off the market. Only the hosting user or an
// admin may archive; existing bookings are unaffected.
func (s *PlaceService) ArchivePlace(ctx context.Context, actor auth.Actor, placeID uuid.UUID) error {
	pl, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return err
	}
	if !pl.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return domain.NewAuthorizationError("place does not belong to this host")
	}

	pl.Archive()
	return s.repo.Update(ctx, pl)
}

func toPlaceDTO(pl *placeDomain.Place) PlaceDTO {
	return PlaceDTO{
		ID:               pl.ID(),
		HostID:           pl.HostID(),
		Title:            pl.Title(),
		Description:      pl.Description(),
		Address:          pl.Address(),
		City:             pl.City(),
		Country:          pl.Country(),
		NightlyRateCents: pl.NightlyRateCents(),
		Currency:         pl.Currency(),
		MaxGuests:        pl.MaxGuests(),
		Status:           string(pl.Status()),
		CreatedAt:        pl.CreatedAt(),
		UpdatedAt:        pl.UpdatedAt(),
	}
}
