package service

import (
	"fmt"
	"time"

	"temple-services-api/core/constants"
	"temple-services-api/modules/booking/entity"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// parseDate parses a "YYYY-MM-DD" calendar date. No timezone normalization;
// the date is treated as the temple's wall-clock date.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// parseTimeOfDay parses a zero-padded "HH:MM" time into minutes from
// midnight. The zero padding is required: stored times are compared
// lexicographically when ordering bookings.
func parseTimeOfDay(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not overlap.
func overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// findConflict scans candidate bookings for one whose slot overlaps
// [start, end) minutes. Bookings with id == exclude are skipped so a
// reschedule never conflicts with its own prior slot.
func findConflict(candidates []entity.Booking, start, end int, exclude uuid.UUID) *entity.Booking {
	for i := range candidates {
		b := &candidates[i]
		if b.ID == exclude {
			continue
		}
		bStart, err := parseTimeOfDay(b.StartTime)
		if err != nil {
			continue
		}
		if overlaps(start, end, bStart, bStart+b.DurationMinutes) {
			return b
		}
	}
	return nil
}

// CanView reports whether the requester may read the booking: the owner or
// an admin. Callers translate a false result to NotFound rather than
// Forbidden so booking existence is not leaked.
func CanView(requesterID uuid.UUID, requesterRole string, b *entity.Booking) bool {
	return b.UserID == requesterID || requesterRole == constants.RoleAdmin
}
