// Package fare is the demo stand-in for trip pricing used while the backend
// is unreachable. Pricing rules proper live on the server.
package fare

import (
	"math"

	"github.com/example/ridepool-client/internal/geo"
	"github.com/example/ridepool-client/internal/models"
)

const (
	BaseFare        = 100.0
	PerKmRate       = 35.0
	PoolingDiscount = 0.25
)

// Estimate prices a trip from pickup to dropoff. Distance is rounded to
// 0.1 km first; distance fare, discount and total are rounded to whole units.
func Estimate(pickup, dropoff models.Location, pooling bool) models.FareInfo {
	distance := math.Round(geo.Distance(pickup, dropoff)*10) / 10

	distanceFare := distance * PerKmRate
	subtotal := BaseFare + distanceFare
	discount := 0.0
	if pooling {
		discount = math.Round(subtotal * PoolingDiscount)
	}

	return models.FareInfo{
		Distance:     distance,
		BaseFare:     BaseFare,
		DistanceFare: math.Round(distanceFare),
		Discount:     discount,
		TotalFare:    math.Round(subtotal - discount),
	}
}
