package services

import (
	"time"

	"vehicle-rental-server/models"
)

// Reservations are half-open [start, end): touching endpoints do not
// overlap. Blocks are closed date ranges [startDay, endDay]: sharing one day
// does overlap.

// OverlapsHalfOpen applies the three classic overlap conditions to two
// half-open intervals: b starts inside a, b ends inside a, or b contains a.
func OverlapsHalfOpen(aStart, aEnd, bStart, bEnd time.Time) bool {
	startsInside := !bStart.Before(aStart) && bStart.Before(aEnd)
	endsInside := bEnd.After(aStart) && !bEnd.After(aEnd)
	contains := !bStart.After(aStart) && !bEnd.Before(aEnd)
	return startsInside || endsInside || contains
}

// OverlapsClosedDates is the date-granularity test for blocks. Times are
// truncated to their UTC date first.
func OverlapsClosedDates(aStart, aEnd, bStart, bEnd time.Time) bool {
	as, ae := models.TruncateDay(aStart), models.TruncateDay(aEnd)
	bs, be := models.TruncateDay(bStart), models.TruncateDay(bEnd)
	startsInside := !bs.Before(as) && !bs.After(ae)
	endsInside := !be.Before(as) && !be.After(ae)
	contains := !bs.After(as) && !be.Before(ae)
	return startsInside || endsInside || contains
}

// reservationCoversDay reports whether [start, end) touches any instant of
// day's UTC date.
func reservationCoversDay(start, end, day time.Time) bool {
	d := models.TruncateDay(day)
	return OverlapsHalfOpen(d, d.Add(24*time.Hour), start, end)
}
