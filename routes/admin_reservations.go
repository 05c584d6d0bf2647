package routes

import (
	"net/http"

	"vehicle-rental-server/services"
	"vehicle-rental-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /admin/reservations
func (h *Handler) AdminListReservations(ctx iris.Context) {
	page, perPage := utils.PageParams(ctx)

	items, total, err := h.Booking.ListReservations(ctx.Request().Context(), services.ListReservationsFilter{
		VehicleID: uint(ctx.URLParamUint64("vehicle_id")),
		RenterID:  uint(ctx.URLParamUint64("renter_id")),
		HostID:    uint(ctx.URLParamUint64("host_id")),
		Status:    ctx.URLParamDefault("status", ""),
		Page:      page,
		Limit:     perPage,
	})
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// GET /admin/reservations/:id
func (h *Handler) AdminGetReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	res, err := h.Booking.GetReservation(ctx.Request().Context(), id, actor(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	trail, err := h.Booking.AuditTrail(ctx.Request().Context(), id)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.JSON(iris.Map{"data": res, "meta": iris.Map{"audit": trail}, "links": iris.Map{}})
}

// PATCH /admin/reservations/:id/status { status, reason }
func (h *Handler) AdminUpdateReservationStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Status == "" {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "status required")
		return
	}

	res, err := h.Booking.TransitionStatus(utils.RequestContext(ctx), services.TransitionRequest{
		ReservationID: id,
		To:            body.Status,
		Actor:         actor(ctx),
		Reason:        body.Reason,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": res.Reservation})
}

// POST /admin/renters/:id/trust/recompute
func (h *Handler) AdminRecomputeTrust(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	trust, err := h.Booking.RecomputeTrust(ctx.Request().Context(), id)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.JSON(iris.Map{"data": trust})
}
