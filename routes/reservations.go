package routes

import (
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/services"
	"vehicle-rental-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
)

type CreateReservationInput struct {
	StartAt          time.Time       `json:"startAt" validate:"required"`
	EndAt            time.Time       `json:"endAt" validate:"required"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaymentMethod    string          `json:"paymentMethod" validate:"max=32"`
	PaymentReference string          `json:"paymentReference" validate:"max=128"`
	PickupLocation   string          `json:"pickupLocation"`
	DropoffLocation  string          `json:"dropoffLocation"`
	Note             string          `json:"note"`
}

type ScoreInput struct {
	StartAt     time.Time       `json:"startAt" validate:"required"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type ReasonInput struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *Handler) CreateReservation(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)
	userID, _ := utils.CurrentUser(ctx)

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, err := h.Booking.CreateReservation(utils.RequestContext(ctx), services.CreateReservationRequest{
		VehicleID:        vehicleID,
		RenterID:         userID,
		StartAt:          input.StartAt,
		EndAt:            input.EndAt,
		TotalAmount:      input.TotalAmount,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
		PickupLocation:   input.PickupLocation,
		DropoffLocation:  input.DropoffLocation,
		Note:             input.Note,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":       true,
		"reservationID": res.Reservation.ID,
		"status":        res.Reservation.Status,
		"approvalType":  res.Reservation.ApprovalType,
		"message":       res.Message,
		"approval":      res.Approval,
		"data":          res.Reservation,
	})
}

func (h *Handler) ScoreReservation(ctx iris.Context) {
	vehicleID := ctx.Params().GetUintDefault("id", 0)
	userID, _ := utils.CurrentUser(ctx)

	var input ScoreInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, err := h.Booking.ScoreReservation(ctx.Request().Context(), vehicleID, userID, input.StartAt, input.TotalAmount)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": res})
}

func (h *Handler) GetReservation(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)
	r, err := h.Booking.GetReservation(ctx.Request().Context(), id, actor(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": r})
}

func (h *Handler) RejectReservation(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)
	userID, _ := utils.CurrentUser(ctx)

	var input ReasonInput
	if !readOptionalJSON(ctx, &input) {
		return
	}

	res, err := h.Booking.RejectReservation(utils.RequestContext(ctx), services.RejectReservationRequest{
		ReservationID: id,
		HostID:        userID,
		Reason:        input.Reason,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "status": res.Reservation.Status, "data": res.Reservation})
}

func (h *Handler) CancelReservation(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)
	userID, _ := utils.CurrentUser(ctx)

	var input ReasonInput
	if !readOptionalJSON(ctx, &input) {
		return
	}

	res, err := h.Booking.CancelReservation(utils.RequestContext(ctx), services.CancelReservationRequest{
		ReservationID: id,
		RenterID:      userID,
		Reason:        input.Reason,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{
		"success":      true,
		"status":       res.Reservation.Status,
		"refundAmount": res.RefundAmount,
		"data":         res.Reservation,
	})
}

// ConfirmReservation - POST /api/reservations/{id}/confirm (host)
func (h *Handler) ConfirmReservation(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)
	res, err := h.Booking.TransitionStatus(utils.RequestContext(ctx), services.TransitionRequest{
		ReservationID: id,
		To:            models.StatusConfirmed,
		Actor:         actor(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "status": res.Reservation.Status, "data": res.Reservation})
}

// readOptionalJSON decodes the body when there is one. It reports false
// after writing the error response.
func readOptionalJSON(ctx iris.Context, out interface{}) bool {
	if ctx.GetContentLength() <= 0 {
		return true
	}
	if err := ctx.ReadJSON(out); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return false
	}
	return true
}
