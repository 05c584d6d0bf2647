package routes

import (
	"net/http"

	"vehicle-rental-server/services"
	"vehicle-rental-server/utils"

	"github.com/kataras/iris/v12"
)

// Handler exposes the booking engine over HTTP.
type Handler struct {
	Booking *services.BookingService
}

// Register mounts every booking route on app. auth verifies the access
// token; it runs before the user and admin middlewares.
func (h *Handler) Register(app *iris.Application, auth iris.Handler) {
	vehicles := app.Party("/api/vehicles", auth, utils.UserIDFromTokenMiddleware)
	{
		vehicles.Post("/{id:uint}/availability/check", h.CheckAvailability)
		vehicles.Get("/{id:uint}/calendar", h.MonthCalendar)
		vehicles.Get("/{id:uint}/calendar.ics", h.ExportICS)
		vehicles.Post("/{id:uint}/reservations", h.CreateReservation)
		vehicles.Post("/{id:uint}/reservations/score", h.ScoreReservation)
		vehicles.Get("/{id:uint}/blocks", h.ListBlocks)
		vehicles.Post("/{id:uint}/blocks", h.SetBlock)
		vehicles.Delete("/{id:uint}/blocks/{blockID:uint}", h.DeleteBlock)
		vehicles.Post("/{id:uint}/blocks/recurring", h.ExpandRecurring)
	}

	reservations := app.Party("/api/reservations", auth, utils.UserIDFromTokenMiddleware)
	{
		reservations.Get("/{id:uint}", h.GetReservation)
		reservations.Post("/{id:uint}/reject", h.RejectReservation)
		reservations.Post("/{id:uint}/cancel", h.CancelReservation)
		reservations.Post("/{id:uint}/confirm", h.ConfirmReservation)
	}

	host := app.Party("/api/host", auth, utils.UserIDFromTokenMiddleware)
	{
		host.Get("/policy", h.GetHostPolicy)
		host.Put("/policy", h.UpdateHostPolicy)
	}

	admin := app.Party("/api/admin", auth, utils.AdminOnlyMiddleware)
	{
		admin.Get("/reservations", h.AdminListReservations)
		admin.Get("/reservations/{id:uint}", h.AdminGetReservation)
		admin.Patch("/reservations/{id:uint}/status", h.AdminUpdateReservationStatus)
		admin.Post("/renters/{id:uint}/trust/recompute", h.AdminRecomputeTrust)
	}
}

var kindStatus = map[services.Kind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindConflict:     http.StatusConflict,
	services.KindUnauthorized: http.StatusForbidden,
	services.KindDeadline:     http.StatusUnprocessableEntity,
	services.KindNotFound:     http.StatusNotFound,
	services.KindState:        http.StatusConflict,
}

// writeServiceError renders a services.Error with its wire code, or a 500
// for anything else.
func writeServiceError(ctx iris.Context, err error) {
	e, ok := services.AsError(err)
	if !ok {
		ctx.Application().Logger().Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusBadRequest
	}
	body := iris.Map{"error": e.Code, "message": e.Message}
	if e.Deadline != nil {
		body["deadline"] = e.Deadline
	}
	if len(e.Conflicts) > 0 {
		body["conflicts"] = e.Conflicts
	}
	ctx.StopWithJSON(status, body)
}

func actor(ctx iris.Context) services.Actor {
	id, admin := utils.CurrentUser(ctx)
	return services.Actor{ID: id, Admin: admin}
}
