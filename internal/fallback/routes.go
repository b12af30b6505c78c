package fallback

import (
	"github.com/example/ridepool-client/internal/geo"
	"github.com/example/ridepool-client/internal/models"
)

type handlers struct {
	data    *Dataset
	drivers *geo.Index
}

func newHandlers(data *Dataset) *handlers {
	idx := geo.NewIndex()
	for _, d := range data.NearbyDrivers() {
		idx.Upsert(d)
	}
	return &handlers{data: data, drivers: idx}
}

// DefaultRoutes is the demo route table over data.
func DefaultRoutes(data *Dataset) []Route {
	h := newHandlers(data)
	driverOrAdmin := []models.Role{models.RoleDriver, models.RoleAdmin}
	admin := models.RoleAdmin

	return []Route{
		NewRoute("GET", "/api/auth/me", h.me).RequireAuth(),
		NewRoute("POST", "/api/auth/logout", h.logout),
		NewRoute("POST", "/api/auth/login", offline),
		NewRoute("POST", "/api/auth/register", offline),

		NewRoute("GET", "/api/user/profile", h.userProfile).RequireAuth(),
		NewRoute("PUT", "/api/user/profile", h.updateUserProfile).RequireAuth(),
		NewRoute("GET", "/api/user/rides", h.userRides),
		NewRoute("GET", "/api/user/rides/:rideId", h.userRide),
		NewRoute("PUT", "/api/user/rides/:bookingId/cancel", h.cancelBooking),
		NewRoute("POST", "/api/user/ride/request", h.requestRide),

		NewRoute("GET", "/api/driver/profile", h.driverProfile, driverOrAdmin...),
		NewRoute("PUT", "/api/driver/profile", h.updateDriverProfile, driverOrAdmin...),
		NewRoute("PUT", "/api/driver/location", h.updateDriverLocation, driverOrAdmin...),
		NewRoute("GET", "/api/driver/ride-requests", h.rideRequests, driverOrAdmin...),
		NewRoute("GET", "/api/driver/rides", h.driverRides, driverOrAdmin...),
		NewRoute("GET", "/api/driver/active-ride", h.activeRide, driverOrAdmin...),
		NewRoute("POST", "/api/driver/ride/:bookingId/accept", h.acceptRide, driverOrAdmin...),
		NewRoute("POST", "/api/driver/ride/:bookingId/reject", h.rejectRide, driverOrAdmin...),
		NewRoute("PUT", "/api/driver/ride/:rideId/status", h.updateRideStatus, driverOrAdmin...),

		NewRoute("GET", "/api/rides/available-pools", h.availablePools),
		NewRoute("GET", "/api/rides/nearby-drivers", h.nearbyDrivers),
		NewRoute("POST", "/api/rides/match", h.matchPools),
		NewRoute("POST", "/api/rides/join-pool/:poolId", h.joinPool),
		NewRoute("GET", "/api/rides/pool/:poolId", h.pool),
		NewRoute("GET", "/api/rides/:rideId", h.ride),

		NewRoute("GET", "/api/admin/dashboard", h.adminDashboard, admin),
		NewRoute("GET", "/api/admin/users", h.adminUsers, admin),
		NewRoute("GET", "/api/admin/drivers", h.adminDrivers, admin),
		NewRoute("GET", "/api/admin/trips", h.adminTrips, admin),
		NewRoute("GET", "/api/admin/feedback", h.adminFeedback, admin),
		NewRoute("GET", "/api/admin/payments", h.adminPayments, admin),
		NewRoute("PUT", "/api/admin/user/:userId", h.adminUpdateUser, admin),
		NewRoute("PUT", "/api/admin/driver/:driverId", h.adminUpdateDriver, admin),
	}
}

// NewDefault wires the default table over a fresh seed.
func NewDefault(ids IdentitySource, opts Options) (*Responder, error) {
	reg, err := NewRegistry(DefaultRoutes(Seed()))
	if err != nil {
		return nil, err
	}
	return NewResponder(reg, ids, opts), nil
}

func offline(Request) (any, error) { return nil, ErrOfflineUnsupported }
