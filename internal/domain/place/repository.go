package place

import (
	"context"

	"github.com/google/uuid"
)

// PlaceRepository defines persistence operations for listings.
type PlaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Place, error)
	FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*Place, error)
	ListActive(ctx context.Context, page, limit int) ([]*Place, int64, error)
	Save(ctx context.Context, place *Place) error
	Update(ctx context.Context, place *Place) error
}
