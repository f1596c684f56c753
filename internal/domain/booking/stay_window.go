package booking

import (
	"time"

	"github.com/wanderstay/service-booking/internal/domain"
)

// StayWindow is an immutable value object for a half-open stay range
// [CheckIn, CheckOut). Both instants are normalized to UTC midnight; the
// booking core works at calendar-day granularity only.
type StayWindow struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// NormalizeDate truncates t to UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NewStayWindow builds a StayWindow from raw instants, normalizing both to
// UTC midnight. The window must span at least one night.
func NewStayWindow(checkIn, checkOut time.Time) (StayWindow, error) {
	w := StayWindow{
		CheckIn:  NormalizeDate(checkIn),
		CheckOut: NormalizeDate(checkOut),
	}
	if !w.CheckIn.Before(w.CheckOut) {
		return StayWindow{}, domain.NewInvalidRangeError("check-in must be before check-out")
	}
	return w, nil
}

// Nights returns the number of nights covered by the window.
func (w StayWindow) Nights() int {
	return int(w.CheckOut.Sub(w.CheckIn) / (24 * time.Hour))
}

// Overlaps reports whether two half-open windows share any night.
// Back-to-back windows (one's check-out equal to the other's check-in) do
// not overlap: checkout day may be another guest's check-in day.
func (w StayWindow) Overlaps(other StayWindow) bool {
	return w.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(w.CheckOut)
}

// StartsAfter reports whether the window's check-in is strictly after the
// given instant at date granularity.
func (w StayWindow) StartsAfter(t time.Time) bool {
	return w.CheckIn.After(NormalizeDate(t))
}
