package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wanderstay/service-booking/internal/domain"
	placeDomain "github.com/wanderstay/service-booking/internal/domain/place"
)

// PlaceModel is the GORM model for the places table.
type PlaceModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostID           uuid.UUID `gorm:"type:uuid;index;not null"`
	Title            string    `gorm:"not null;size:200"`
	Description      string    `gorm:"size:2000"`
	Address          string    `gorm:"size:500"`
	City             string    `gorm:"size:100;index"`
	Country          string    `gorm:"size:100"`
	NightlyRateCents int64     `gorm:"not null"`
	Currency         string    `gorm:"not null;size:3;default:'USD'"`
	MaxGuests        int       `gorm:"not null"`
	Status           string    `gorm:"not null;size:20;index"`
	Version          int64     `gorm:"not null;default:1"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlaceModel) TableName() string {
	return "places"
}

// GormPlaceRepository is the GORM-based implementation of PlaceRepository.
type GormPlaceRepository struct {
	db *gorm.DB
}

// NewGormPlaceRepository creates a new GormPlaceRepository.
func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

// FindByID retrieves a place by its unique identifier.
func (r *GormPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*placeDomain.Place, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Place", id.String())
		}
		return nil, fmt.Errorf("failed to find place by ID: %w", err)
	}
	return toDomainPlace(&model), nil
}

// FindByHostID retrieves all places owned by a host.
func (r *GormPlaceRepository) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*placeDomain.Place, error) {
	var models []PlaceModel
	if err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find host places: %w", err)
	}

	places := make([]*placeDomain.Place, len(models))
	for i, m := range models {
		places[i] = toDomainPlace(&m)
	}
	return places, nil
}

// ListActive retrieves active places with pagination.
func (r *GormPlaceRepository) ListActive(ctx context.Context, page, limit int) ([]*placeDomain.Place, int64, error) {
	active := string(placeDomain.PlaceStatusActive)

	var total int64
	if err := r.db.WithContext(ctx).Model(&PlaceModel{}).Where("status = ?", active).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count places: %w", err)
	}

	var models []PlaceModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status = ?", active).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list places: %w", err)
	}

	places := make([]*placeDomain.Place, len(models))
	for i, m := range models {
		places[i] = toDomainPlace(&m)
	}
	return places, total, nil
}

// Save persists a new place.
func (r *GormPlaceRepository) Save(ctx context.Context, p *placeDomain.Place) error {
	if err := r.db.WithContext(ctx).Create(toPlaceModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save place: %w", err)
	}
	return nil
}

// Update persists changes to an existing place with optimistic locking.
func (r *GormPlaceRepository) Update(ctx context.Context, p *placeDomain.Place) error {
	model := toPlaceModel(p)
	expectedVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PlaceModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"title":              model.Title,
			"description":        model.Description,
			"address":            model.Address,
			"city":               model.City,
			"country":            model.Country,
			"nightly_rate_cents": model.NightlyRateCents,
			"currency":           model.Currency,
			"max_guests":         model.MaxGuests,
			"status":             model.Status,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update place: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("place was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toPlaceModel(p *placeDomain.Place) *PlaceModel {
	return &PlaceModel{
		ID:               p.ID(),
		HostID:           p.HostID(),
		Title:            p.Title(),
		Description:      p.Description(),
		Address:          p.Address(),
		City:             p.City(),
		Country:          p.Country(),
		NightlyRateCents: p.NightlyRateCents(),
		Currency:         p.Currency(),
		MaxGuests:        p.MaxGuests(),
		Status:           string(p.Status()),
		Version:          p.Version(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}

func toDomainPlace(m *PlaceModel) *placeDomain.Place {
	return placeDomain.Reconstruct(
		m.ID,
		m.HostID,
		m.Title,
		m.Description,
		m.Address,
		m.City,
		m.Country,
		m.NightlyRateCents,
		m.Currency,
		m.MaxGuests,
		placeDomain.PlaceStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
