package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// weekdays indexes rrule weekdays by 0=Sunday..6=Saturday.
var weekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// RecurringPattern selects days of the week, 0=Sunday..6=Saturday.
type RecurringPattern struct {
	DaysOfWeek []int `json:"daysOfWeek"`
}

type RecurringRequest struct {
	VehicleID  uint
	Pattern    RecurringPattern
	RangeStart time.Time
	RangeEnd   time.Time
	Available  bool
	Reason     string
	Actor      Actor
}

type RecurringResult struct {
	PatternID string   `json:"patternID"`
	Dates     []string `json:"dates"`
	Written   int      `json:"written"`
}

// storedPattern is what lands in each generated row's pattern column.
type storedPattern struct {
	DaysOfWeek []int  `json:"daysOfWeek"`
	RangeStart string `json:"rangeStart"`
	RangeEnd   string `json:"rangeEnd"`
}

func (s *BookingService) validatePattern(p RecurringPattern, start, end time.Time) error {
	if len(p.DaysOfWeek) == 0 {
		return validationError(CodeInvalidPattern, "at least one day of week is required")
	}
	seen := make(map[int]bool, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return validationError(CodeInvalidPattern, fmt.Sprintf("day of week %d out of range 0..6", d))
		}
		if seen[d] {
			return validationError(CodeInvalidPattern, fmt.Sprintf("day of week %d listed twice", d))
		}
		seen[d] = true
	}
	if start.IsZero() || end.IsZero() {
		return validationError(CodeInvalidPattern, "range start and end are required")
	}
	if end.Before(start) {
		return validationError(CodeInvalidPattern, "range end is before range start")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.maxRecurringDays {
		return validationError(CodeInvalidPattern, fmt.Sprintf("range covers %d days, limit is %d", days, s.maxRecurringDays))
	}
	return nil
}

// expandDays lists every date in [start, end] whose weekday is in the
// pattern, in ascending order.
func expandDays(p RecurringPattern, start, end time.Time) ([]time.Time, error) {
	byDay := make([]rrule.Weekday, 0, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		byDay = append(byDay, weekdays[d])
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   start,
		Until:     end,
		Byweekday: byDay,
	})
	if err != nil {
		return nil, err
	}
	return rule.Between(start, end, true), nil
}

// seriesID is stable for the same vehicle, weekdays and range, so re-running
// an expansion keeps its rows in one series.
func seriesID(vehicleID uint, days []int, start, end time.Time) string {
	key := fmt.Sprintf("vehicle/%d/days/%v/%s/%s", vehicleID, days, start.Format(dateLayout), end.Format(dateLayout))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// ExpandRecurring writes one single-day seasonal block for every matching
// date in the range. Each day is upserted on (vehicle, day, day), so a
// single-day row of any category on that date is overwritten and re-running
// leaves the row count unchanged. Either every date is written or none.
func (s *BookingService) ExpandRecurring(ctx context.Context, req RecurringRequest) (*RecurringResult, error) {
	start, end := models.TruncateDay(req.RangeStart), models.TruncateDay(req.RangeEnd)
	if err := s.validatePattern(req.Pattern, start, end); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleForActor(ctx, s.store, req.VehicleID, req.Actor)
	if err != nil {
		return nil, err
	}

	dates, err := expandDays(req.Pattern, start, end)
	if err != nil {
		return nil, validationError(CodeInvalidPattern, err.Error())
	}

	days := append([]int(nil), req.Pattern.DaysOfWeek...)
	sort.Ints(days)
	id := seriesID(vehicle.ID, days, start, end)
	raw, err := json.Marshal(storedPattern{DaysOfWeek: days, RangeStart: start.Format(dateLayout), RangeEnd: end.Format(dateLayout)})
	if err != nil {
		return nil, err
	}

	res := &RecurringResult{PatternID: id, Dates: make([]string, 0, len(dates))}
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		if _, err := tx.LockVehicle(ctx, vehicle.ID); err != nil {
			return err
		}
		for _, d := range dates {
			block := &models.AvailabilityBlock{
				VehicleID: vehicle.ID,
				StartDate: d,
				EndDate:   d,
				Category:  models.BlockCategorySeasonal,
				Blocked:   !req.Available,
				Reason:    req.Reason,
				CreatedBy: req.Actor.ID,
				PatternID: id,
				Pattern:   datatypes.JSON(raw),
			}
			if err := tx.UpsertDayBlock(ctx, block); err != nil {
				return err
			}
			res.Dates = append(res.Dates, d.Format(dateLayout))
		}
		return s.audit(ctx, tx, req.Actor.ID, "block.recurring", "vehicle", vehicle.ID, map[string]interface{}{
			"patternID": id,
			"dates":     len(dates),
			"blocked":   !req.Available,
		})
	})
	if err != nil {
		return nil, err
	}
	res.Written = len(res.Dates)

	s.log.Infof("vehicle %d recurring pattern %s wrote %d days", vehicle.ID, id, res.Written)
	s.invalidateCalendar(ctx, vehicle.ID)
	return res, nil
}
