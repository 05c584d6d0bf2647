package routes

import (
	"time"

	"vehicle-rental-server/services"
	"vehicle-rental-server/utils"

	"github.com/kataras/iris/v12"
)

// Availability Management Routes

type CheckAvailabilityInput struct {
	StartAt time.Time `json:"startAt" validate:"required"`
	EndAt   time.Time `json:"endAt" validate:"required"`
}

type BlockInput struct {
	StartDate     string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"endDate" validate:"required,datetime=2006-01-02"`
	IsAvailable   bool   `json:"isAvailable"`
	Category      string `json:"category" validate:"omitempty,oneof=manual maintenance personal seasonal"`
	Reason        string `json:"reason" validate:"max=500"`
	ReservationID *uint  `json:"reservationID"`
}

type RecurringInput struct {
	DaysOfWeek  []int  `json:"daysOfWeek" validate:"required,min=1,max=7,dive,min=0,max=6"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
	IsAvailable bool   `json:"isAvailable"`
	Reason      string `json:"reason" validate:"max=500"`
}

func (h *Handler) CheckAvailability(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)

	var input CheckAvailabilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, err := h.Booking.CheckAvailability(ctx.Request().Context(), vehicleID, input.StartAt, input.EndAt)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": res})
}

func (h *Handler) SetBlock(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)

	var input BlockInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	start, _ := time.Parse("2006-01-02", input.StartDate)
	end, _ := time.Parse("2006-01-02", input.EndDate)

	block, err := h.Booking.SetManualBlock(utils.RequestContext(ctx), services.SetBlockRequest{
		VehicleID:     vehicleID,
		StartDate:     start,
		EndDate:       end,
		Available:     input.IsAvailable,
		Category:      input.Category,
		Reason:        input.Reason,
		ReservationID: input.ReservationID,
		Actor:         actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": block})
}

func (h *Handler) DeleteBlock(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)
	blockID := ctx.Params().GetUintDefault("blockID", 0)

	if err := h.Booking.DeleteBlock(utils.RequestContext(ctx), vehicleID, blockID, actor(ctx)); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

func (h *Handler) ListBlocks(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)

	blocks, err := h.Booking.ListBlocks(ctx.Request().Context(), vehicleID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": blocks})
}

func (h *Handler) ExpandRecurring(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)

	var input RecurringInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	start, _ := time.Parse("2006-01-02", input.StartDate)
	end, _ := time.Parse("2006-01-02", input.EndDate)

	res, err := h.Booking.ExpandRecurring(utils.RequestContext(ctx), services.RecurringRequest{
		VehicleID:  vehicleID,
		Pattern:    services.RecurringPattern{DaysOfWeek: input.DaysOfWeek},
		RangeStart: start,
		RangeEnd:   end,
		Available:  input.IsAvailable,
		Reason:     input.Reason,
		Actor:      actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": res})
}

// MonthCalendar - GET /api/vehicles/{id}/calendar?year=&month=
func (h *Handler) MonthCalendar(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)
	now := time.Now().UTC()
	year := ctx.URLParamIntDefault("year", now.Year())
	month := ctx.URLParamIntDefault("month", int(now.Month()))

	cal, err := h.Booking.MonthCalendar(ctx.Request().Context(), vehicleID, year, month)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": cal})
}

// ExportICS - GET /api/vehicles/{id}/calendar.ics?from=&to= (dates, default
// the next 90 days)
func (h *Handler) ExportICS(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)

	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 90)
	if v := ctx.URLParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "from must be YYYY-MM-DD", ctx)
			return
		}
		from = t
	}
	if v := ctx.URLParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "to must be YYYY-MM-DD", ctx)
			return
		}
		to = t
	}

	body, err := h.Booking.ExportICS(ctx.Request().Context(), vehicleID, from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.ContentType("text/calendar; charset=utf-8")
	ctx.WriteString(body)
}
