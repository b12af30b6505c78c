package fallback

import (
	"fmt"
	"time"

	"github.com/example/ridepool-client/internal/fare"
	"github.com/example/ridepool-client/internal/models"
)

func (h *handlers) me(req Request) (any, error) {
	return req.Identity.User, nil
}

func (h *handlers) logout(Request) (any, error) {
	return map[string]string{"message": "Logged out (demo mode)"}, nil
}

func (h *handlers) userProfile(req Request) (any, error) {
	return req.Identity.User, nil
}

// updateUserProfile echoes the submitted fields over the current user. The
// change is not kept.
func (h *handlers) updateUserProfile(req Request) (any, error) {
	u := req.Identity.User
	if v, ok := req.Params.String("name"); ok {
		u.Name = v
	}
	if v, ok := req.Params.String("phone"); ok {
		u.Phone = v
	}
	if v, ok := req.Params.String("profileImage"); ok {
		u.ProfileImage = v
	}
	u.UpdatedAt = req.Now.Format(time.RFC3339)
	return u, nil
}

func (h *handlers) userRides(req Request) (any, error) {
	rides := h.data.UserRides()
	if status, ok := req.Params.String("status"); ok {
		filtered := rides[:0]
		for _, r := range rides {
			if r.Status == status {
				filtered = append(filtered, r)
			}
		}
		rides = filtered
	}
	page, pg := paginate(rides, req.Params)
	return map[string]any{"rides": page, "pagination": pg}, nil
}

func (h *handlers) findBooking(id string) (models.Booking, bool) {
	for _, b := range h.data.UserRides() {
		if b.ID == id || (b.RideID != "" && b.RideID == id) {
			return b, true
		}
	}
	return models.Booking{}, false
}

func (h *handlers) userRide(req Request) (any, error) {
	id, _ := req.Params.String("rideId")
	b, ok := h.findBooking(id)
	if !ok {
		return nil, fmt.Errorf("%w: ride %s", ErrNotFound, id)
	}
	return map[string]any{"ride": b}, nil
}

func (h *handlers) cancelBooking(req Request) (any, error) {
	id, _ := req.Params.String("bookingId")
	b, ok := h.findBooking(id)
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	if b.Status == "completed" || b.Status == "cancelled" {
		return nil, fmt.Errorf("%w: booking %s is already %s", ErrInvalidParams, id, b.Status)
	}
	b.Status = "cancelled"
	b.UpdatedAt = req.Now.Format(time.RFC3339)
	return map[string]any{"booking": b, "message": "Ride cancelled (demo mode)"}, nil
}

func (h *handlers) requestRide(req Request) (any, error) {
	pickup, err := req.Params.Location("pickupLocation")
	if err != nil {
		return nil, err
	}
	dropoff, err := req.Params.Location("dropoffLocation")
	if err != nil {
		return nil, err
	}
	pooling, _ := req.Params.Bool("wantPooling")

	receipt := models.BookingReceipt{
		BookingID:       req.NewID("booking"),
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		WantPooling:     pooling,
		Status:          "requested",
		FareInfo:        fare.Estimate(pickup.Point(), dropoff.Point(), pooling),
		CreatedAt:       req.Now.Format(time.RFC3339),
	}
	if req.Identity != nil {
		receipt.UserID = req.Identity.UserID()
	}
	return receipt, nil
}
