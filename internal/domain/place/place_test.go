package place

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderstay/service-booking/internal/domain"
)

func newTestPlace(t *testing.T) *Place {
	t.Helper()
	pl, err := NewPlace(
		uuid.New(),
		"Seaside cottage",
		"Two bedrooms, ocean view",
		"1 Beach Rd",
		"Porto",
		"Portugal",
		12000,
		"EUR",
		4,
	)
	require.NoError(t, err)
	return pl
}

func TestNewPlace(t *testing.T) {
	pl := newTestPlace(t)

	assert.Equal(t, PlaceStatusActive, pl.Status())
	assert.True(t, pl.IsActive())
	assert.Equal(t, int64(12000), pl.NightlyRateCents())
	assert.Equal(t, 4, pl.MaxGuests())
}

func TestNewPlace_Validation(t *testing.T) {
	_, err := NewPlace(uuid.Nil, "Cottage", "", "", "", "", 12000, "EUR", 4)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPlace(uuid.New(), "", "", "", "", "", 12000, "EUR", 4)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPlace(uuid.New(), "Cottage", "", "", "", "", 0, "EUR", 4)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPlace(uuid.New(), "Cottage", "", "", "", "", 12000, "EUR", 0)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestPlace_Update_PartialFields(t *testing.T) {
	pl := newTestPlace(t)
	before := pl.Version()

	pl.Update("", "", "", "", "", 15000, 0)

	assert.Equal(t, "Seaside cottage", pl.Title())
	assert.Equal(t, int64(15000), pl.NightlyRateCents())
	assert.Equal(t, 4, pl.MaxGuests())
	assert.Equal(t, before+1, pl.Version())
}

func TestPlace_Archive(t *testing.T) {
	pl := newTestPlace(t)

	pl.Archive()

	assert.Equal(t, PlaceStatusArchived, pl.Status())
	assert.False(t, pl.IsActive())
}

func TestPlace_IsOwnedBy(t *testing.T) {
	hostID := uuid.New()
	pl, err := NewPlace(hostID, "Cabin", "", "", "", "", 9000, "USD", 2)
	require.NoError(t, err)

	assert.True(t, pl.IsOwnedBy(hostID))
	assert.False(t, pl.IsOwnedBy(uuid.New()))
}
