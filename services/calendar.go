package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	ics "github.com/arran4/golang-ical"
)

const (
	DayAvailable = "available"
	DayBooked    = "booked"
	DayBlocked   = "blocked"
)

type DayDetails struct {
	ReservationID     uint   `json:"reservationID,omitempty"`
	ReservationStatus string `json:"reservationStatus,omitempty"`
	BlockID           uint   `json:"blockID,omitempty"`
	Category          string `json:"category,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

type CalendarDay struct {
	Date      string      `json:"date"`
	Available bool        `json:"available"`
	Status    string      `json:"status"`
	Details   *DayDetails `json:"details,omitempty"`
}

type MonthCalendar struct {
	VehicleID uint          `json:"vehicleID"`
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Days      []CalendarDay `json:"days"`
}

// MonthCalendar lists every day of the month with its status. A day touched
// by an active reservation is booked, else a blocked row makes it blocked.
func (s *BookingService) MonthCalendar(ctx context.Context, vehicleID uint, year, month int) (*MonthCalendar, error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return nil, validationError(CodeInvalidInput, "year and month are out of range")
	}
	if _, err := s.store.Vehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("vehicle not found")
		}
		return nil, err
	}

	cached, slot, ok, err := s.cache.Get(ctx, vehicleID, year, month)
	if err != nil {
		s.log.Warnf("calendar cache read vehicle=%d %d-%02d: %v", vehicleID, year, month, err)
	} else if ok {
		return cached, nil
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	reservations, err := s.store.OverlappingReservations(ctx, vehicleID, first, last.Add(24*time.Hour), models.ActiveStatuses)
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.OverlappingBlocks(ctx, vehicleID, first, last)
	if err != nil {
		return nil, err
	}

	cal := &MonthCalendar{VehicleID: vehicleID, Year: year, Month: month}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		cal.Days = append(cal.Days, dayStatus(d, reservations, blocks))
	}

	if err := s.cache.Set(ctx, slot, cal); err != nil {
		s.log.Warnf("calendar cache write vehicle=%d %d-%02d: %v", vehicleID, year, month, err)
	}
	return cal, nil
}

func dayStatus(day time.Time, reservations []models.Reservation, blocks []models.AvailabilityBlock) CalendarDay {
	out := CalendarDay{Date: day.Format(dateLayout), Available: true, Status: DayAvailable}
	for _, r := range reservations {
		if reservationCoversDay(r.StartAt, r.EndAt, day) {
			out.Available = false
			out.Status = DayBooked
			out.Details = &DayDetails{ReservationID: r.ID, ReservationStatus: r.Status}
			return out
		}
	}
	for i := range blocks {
		b := &blocks[i]
		if b.Blocked && b.Covers(day) {
			out.Available = false
			out.Status = DayBlocked
			out.Details = &DayDetails{BlockID: b.ID, Category: b.Category, Reason: b.Reason}
			return out
		}
	}
	return out
}

// ExportICS renders the vehicle's active reservations and blocked windows in
// [from, to) as an iCalendar feed.
func (s *BookingService) ExportICS(ctx context.Context, vehicleID uint, from, to time.Time) (string, error) {
	if err := validateInterval(from, to); err != nil {
		return "", err
	}
	vehicle, err := s.store.Vehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", notFoundError("vehicle not found")
		}
		return "", err
	}

	reservations, err := s.store.OverlappingReservations(ctx, vehicleID, from, to, models.ActiveStatuses)
	if err != nil {
		return "", err
	}
	blocks, err := s.store.OverlappingBlocks(ctx, vehicleID, from, to.Add(-time.Nanosecond))
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//vehicle-rental-server//availability//EN")
	cal.SetXWRCalName(fmt.Sprintf("%s availability", vehicle.Title))

	for _, r := range reservations {
		ev := cal.AddEvent(fmt.Sprintf("reservation-%d@vehicle-rental-server", r.ID))
		ev.SetDtStampTime(now)
		ev.SetStartAt(r.StartAt)
		ev.SetEndAt(r.EndAt)
		ev.SetSummary("Booked")
		if r.Status == models.StatusPending {
			ev.SetStatus(ics.ObjectStatusTentative)
		} else {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	for _, b := range blocks {
		ev := cal.AddEvent(fmt.Sprintf("block-%d@vehicle-rental-server", b.ID))
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(b.StartDate)
		ev.SetAllDayEndAt(b.EndDate.AddDate(0, 0, 1))
		summary := "Blocked (" + b.Category + ")"
		if b.Reason != "" {
			summary += ": " + b.Reason
		}
		ev.SetSummary(summary)
	}

	return cal.Serialize(), nil
}
