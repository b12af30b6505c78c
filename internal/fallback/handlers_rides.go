package fallback

import (
	"fmt"
	"math"
	"sort"

	"github.com/example/ridepool-client/internal/fare"
	"github.com/example/ridepool-client/internal/geo"
	"github.com/example/ridepool-client/internal/models"
)

const (
	maxPoolDeviationKm = 5.0
	nearbyLimit        = 10
)

func (h *handlers) availablePools(Request) (any, error) {
	return map[string]any{"pools": h.data.Pools()}, nil
}

// nearbyDrivers ranks seed drivers by distance when lat/lng are given and
// otherwise returns them in seed order.
func (h *handlers) nearbyDrivers(req Request) (any, error) {
	lat, okLat := req.Params.Float("lat")
	lng, okLng := req.Params.Float("lng")
	if !okLat || !okLng {
		return map[string]any{"drivers": h.data.NearbyDrivers()}, nil
	}
	if !geo.ValidPoint(models.Location{Lat: lat, Lng: lng}) {
		return nil, fmt.Errorf("%w: lat/lng out of range", ErrInvalidParams)
	}
	radius, _ := req.Params.Float("radius")
	return map[string]any{"drivers": h.drivers.Nearby(lat, lng, radius, req.Params.Int("limit", nearbyLimit))}, nil
}

// matchPools scores open pooled rides by how far the caller's pickup and
// dropoff sit from the pool's own.
func (h *handlers) matchPools(req Request) (any, error) {
	pickup, err := req.Params.Location("pickupLocation")
	if err != nil {
		return nil, err
	}
	dropoff, err := req.Params.Location("dropoffLocation")
	if err != nil {
		return nil, err
	}

	matches := []models.PoolMatch{}
	for _, p := range h.data.Pools() {
		if p.Type != "ride" || p.CurrentPassengers >= p.MaxPassengers {
			continue
		}
		dev := geo.Distance(pickup.Point(), p.PickupLocation.Point()) + geo.Distance(dropoff.Point(), p.DropoffLocation.Point())
		dev = math.Round(dev*10) / 10
		if dev > maxPoolDeviationKm {
			continue
		}
		matches = append(matches, models.PoolMatch{
			RideID:             p.ID,
			CurrentPassengers:  p.CurrentPassengers,
			Deviation:          dev,
			DiscountPercentage: fare.PoolingDiscount * 100,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Deviation < matches[j].Deviation })

	return map[string]any{
		"matches":  matches,
		"fareInfo": fare.Estimate(pickup.Point(), dropoff.Point(), true),
	}, nil
}

func (h *handlers) joinPool(req Request) (any, error) {
	poolID, _ := req.Params.String("poolId")
	return map[string]any{"poolId": poolID, "message": "Successfully joined the pool (demo mode)"}, nil
}

// pool falls back to the first seed pool for unknown ids.
func (h *handlers) pool(req Request) (any, error) {
	poolID, _ := req.Params.String("poolId")
	pools := h.data.Pools()
	for _, p := range pools {
		if p.ID == poolID {
			return map[string]any{"pool": p}, nil
		}
	}
	return map[string]any{"pool": pools[0]}, nil
}

func (h *handlers) ride(req Request) (any, error) {
	id, _ := req.Params.String("rideId")
	for _, set := range [][]models.Ride{h.data.DriverRides(), h.data.RecentRides()} {
		for _, r := range set {
			if r.ID == id {
				return map[string]any{"ride": r}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: ride %s", ErrNotFound, id)
}
