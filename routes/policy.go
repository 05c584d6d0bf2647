package routes

import (
	"vehicle-rental-server/services"
	"vehicle-rental-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
)

type HostPolicyInput struct {
	AutoApproveEnabled   bool            `json:"autoApproveEnabled"`
	MaxAutoApproveAmount decimal.Decimal `json:"maxAutoApproveAmount"`
	MinAdvanceHours      int             `json:"minAdvanceHours" validate:"min=0,max=8760"`
	RequireVerification  bool            `json:"requireVerification"`
	MinRenterTrustScore  int             `json:"minRenterTrustScore" validate:"min=0,max=100"`
}

func (h *Handler) GetHostPolicy(ctx iris.Context) {
	userID, _ := utils.CurrentUser(ctx)
	p, err := h.Booking.HostPolicy(ctx.Request().Context(), userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": p})
}

func (h *Handler) UpdateHostPolicy(ctx iris.Context) {
	userID, _ := utils.CurrentUser(ctx)

	var input HostPolicyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	p, err := h.Booking.UpdateHostPolicy(utils.RequestContext(ctx), userID, services.HostPolicyUpdate{
		AutoApproveEnabled:   input.AutoApproveEnabled,
		MaxAutoApproveAmount: input.MaxAutoApproveAmount,
		MinAdvanceHours:      input.MinAdvanceHours,
		RequireVerification:  input.RequireVerification,
		MinRenterTrustScore:  input.MinRenterTrustScore,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": p})
}
