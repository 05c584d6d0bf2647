package services

import (
	"context"
	"encoding/json"
	"errors"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/kataras/golog"
	"gorm.io/datatypes"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    uint
	Admin bool
}

// Deps wires a BookingService. Only Store is required.
type Deps struct {
	Store            *storage.Store
	Clock            Clock
	Logger           *golog.Logger
	Cache            CalendarCache
	Refunds          RefundIssuer
	MaxRecurringDays int
}

// BookingService owns every reservation and availability rule. It is safe for
// concurrent use; all coordination happens in the database.
type BookingService struct {
	store            *storage.Store
	clock            Clock
	log              *golog.Logger
	cache            CalendarCache
	refunds          RefundIssuer
	maxRecurringDays int
}

func NewBookingService(d Deps) *BookingService {
	s := &BookingService{
		store:            d.Store,
		clock:            d.Clock,
		log:              d.Logger,
		cache:            d.Cache,
		refunds:          d.Refunds,
		maxRecurringDays: d.MaxRecurringDays,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.log == nil {
		s.log = golog.Default
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.refunds == nil {
		s.refunds = &LogRefundIssuer{Logger: s.log}
	}
	if s.maxRecurringDays <= 0 {
		s.maxRecurringDays = 366
	}
	return s
}

type clientIPKey struct{}

// WithClientIP attaches the caller's address for audit entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// vehicleForActor loads the vehicle and checks that actor may manage it.
func (s *BookingService) vehicleForActor(ctx context.Context, st *storage.Store, vehicleID uint, actor Actor) (*models.Vehicle, error) {
	v, err := st.Vehicle(ctx, vehicleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundError("vehicle not found")
	}
	if err != nil {
		return nil, err
	}
	if !actor.Admin && v.HostID != actor.ID {
		return nil, unauthorizedError("only the vehicle's host can manage its availability")
	}
	return v, nil
}

func (s *BookingService) audit(ctx context.Context, st *storage.Store, actorID uint, action, resourceType string, resourceID uint, details map[string]interface{}) error {
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = b
	}
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return st.RecordAudit(ctx, &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      raw,
		IPAddress:    ip,
		CreatedAt:    s.clock.Now(),
	})
}

// invalidateCalendar drops cached months of the vehicle. A failure only
// costs staleness until the TTL, so it is logged and swallowed.
func (s *BookingService) invalidateCalendar(ctx context.Context, vehicleID uint) {
	if err := s.cache.Invalidate(ctx, vehicleID); err != nil {
		s.log.Warnf("calendar cache invalidate vehicle=%d: %v", vehicleID, err)
	}
}
