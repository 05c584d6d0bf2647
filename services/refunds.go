package services

import (
	"context"

	"vehicle-rental-server/models"

	"github.com/kataras/golog"
	"github.com/shopspring/decimal"
)

// RefundIssuer hands a refund to the payment side. It runs after the
// cancellation has committed.
type RefundIssuer interface {
	IssueRefund(ctx context.Context, r *models.Reservation, amount decimal.Decimal) error
}

// LogRefundIssuer records refunds for manual settlement.
type LogRefundIssuer struct {
	Logger *golog.Logger
}

func (l *LogRefundIssuer) IssueRefund(_ context.Context, r *models.Reservation, amount decimal.Decimal) error {
	l.Logger.Infof("refund due: reservation=%d renter=%d amount=%s method=%s ref=%s",
		r.ID, r.RenterID, amount.StringFixed(2), r.PaymentMethod, r.PaymentReference)
	return nil
}
