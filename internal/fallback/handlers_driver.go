package fallback

import (
	"fmt"
	"time"

	"github.com/example/ridepool-client/internal/geo"
	"github.com/example/ridepool-client/internal/models"
)

var rideStatuses = map[string]bool{
	"accepted":    true,
	"in-progress": true,
	"completed":   true,
	"cancelled":   true,
}

func (h *handlers) driverProfile(req Request) (any, error) {
	return map[string]any{"driver": h.data.DriverProfile(), "user": req.Identity.User}, nil
}

func (h *handlers) updateDriverProfile(req Request) (any, error) {
	d := h.data.DriverProfile()
	if v, ok := req.Params.Bool("isAvailable"); ok {
		d.IsAvailable = v
	}
	if v, ok := req.Params.String("vehicleType"); ok {
		d.VehicleType = v
	}
	if v, ok := req.Params.String("vehicleNumber"); ok {
		d.VehicleNumber = v
	}
	return map[string]any{"driver": d}, nil
}

func (h *handlers) updateDriverLocation(req Request) (any, error) {
	lat, okLat := req.Params.Float("lat")
	lng, okLng := req.Params.Float("lng")
	p := models.Location{Lat: lat, Lng: lng}
	if !okLat || !okLng || !geo.ValidPoint(p) {
		return nil, fmt.Errorf("%w: lat and lng are required and must be in range", ErrInvalidParams)
	}
	return map[string]any{"location": p, "message": "Location updated (demo mode)"}, nil
}

func (h *handlers) rideRequests(req Request) (any, error) {
	reqs := h.data.RideRequests()
	if pooled, ok := req.Params.Bool("wantPooling"); ok {
		filtered := reqs[:0]
		for _, r := range reqs {
			if r.WantPooling == pooled {
				filtered = append(filtered, r)
			}
		}
		reqs = filtered
	}
	page, pg := paginate(reqs, req.Params)
	return map[string]any{"requests": page, "pagination": pg}, nil
}

func (h *handlers) driverRides(req Request) (any, error) {
	rides := filterRides(h.data.DriverRides(), req.Params)
	page, pg := paginate(rides, req.Params)
	return map[string]any{"rides": page, "pagination": pg}, nil
}

func (h *handlers) activeRide(Request) (any, error) {
	for _, r := range h.data.DriverRides() {
		if r.Status == "in-progress" || r.Status == "accepted" {
			return map[string]any{"ride": r}, nil
		}
	}
	return map[string]any{"ride": nil}, nil
}

func (h *handlers) acceptRide(req Request) (any, error) {
	bookingID, _ := req.Params.String("bookingId")
	return map[string]any{
		"rideId":    req.NewID("ride"),
		"bookingId": bookingID,
		"message":   "Ride accepted successfully (demo mode)",
	}, nil
}

func (h *handlers) rejectRide(req Request) (any, error) {
	bookingID, _ := req.Params.String("bookingId")
	return map[string]any{"bookingId": bookingID, "message": "Ride rejected (demo mode)"}, nil
}

func (h *handlers) updateRideStatus(req Request) (any, error) {
	rideID, _ := req.Params.String("rideId")
	status, _ := req.Params.String("status")
	if !rideStatuses[status] {
		return nil, fmt.Errorf("%w: unknown ride status %q", ErrInvalidParams, status)
	}
	return map[string]any{
		"rideId":    rideID,
		"status":    status,
		"updatedAt": req.Now.Format(time.RFC3339),
	}, nil
}

func filterRides(rides []models.Ride, p Params) []models.Ride {
	status, ok := p.String("status")
	if !ok {
		return rides
	}
	out := rides[:0]
	for _, r := range rides {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
