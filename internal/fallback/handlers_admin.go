package fallback

import (
	"fmt"
	"time"

	"github.com/example/ridepool-client/internal/models"
)

func (h *handlers) adminDashboard(Request) (any, error) {
	return map[string]any{"metrics": h.data.Metrics(), "recentRides": h.data.RecentRides()}, nil
}

func (h *handlers) adminUsers(req Request) (any, error) {
	page, pg := paginate(h.data.UsersByRole(models.RoleRider), req.Params)
	return map[string]any{"users": page, "pagination": pg}, nil
}

func (h *handlers) adminDrivers(req Request) (any, error) {
	page, pg := paginate(h.data.UsersByRole(models.RoleDriver), req.Params)
	return map[string]any{"drivers": page, "pagination": pg}, nil
}

func (h *handlers) adminTrips(req Request) (any, error) {
	rides := append(h.data.RecentRides(), h.data.DriverRides()...)
	page, pg := paginate(filterRides(rides, req.Params), req.Params)
	return map[string]any{"rides": page, "pagination": pg}, nil
}

func (h *handlers) adminFeedback(req Request) (any, error) {
	page, pg := paginate(h.data.Feedback(), req.Params)
	return map[string]any{"feedback": page, "pagination": pg}, nil
}

func (h *handlers) adminPayments(req Request) (any, error) {
	page, pg := paginate(h.data.Payments(), req.Params)
	return map[string]any{"summary": h.data.PaymentSummary(), "payments": page, "pagination": pg}, nil
}

func (h *handlers) adminUpdateUser(req Request) (any, error) {
	id, _ := req.Params.String("userId")
	u, ok := h.data.User(id)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if v, ok := req.Params.String("name"); ok {
		u.Name = v
	}
	if v, ok := req.Params.String("phone"); ok {
		u.Phone = v
	}
	if v, ok := req.Params.String("role"); ok {
		role, valid := models.ParseRole(v)
		if !valid {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidParams, v)
		}
		u.Role = role
	}
	u.UpdatedAt = req.Now.Format(time.RFC3339)
	return map[string]any{"user": u, "message": "User updated (demo mode)"}, nil
}

func (h *handlers) adminUpdateDriver(req Request) (any, error) {
	id, _ := req.Params.String("driverId")
	d := h.data.DriverProfile()
	if id != d.ID && id != d.UserID {
		return nil, fmt.Errorf("%w: driver %s", ErrNotFound, id)
	}
	if v, ok := req.Params.Bool("isAvailable"); ok {
		d.IsAvailable = v
	}
	d.UpdatedAt = req.Now.Format(time.RFC3339)
	return map[string]any{"driver": d, "message": "Driver updated (demo mode)"}, nil
}
