package geo

import (
	"math"
	"sort"
	"sync"

	"github.com/example/ridepool-client/internal/models"
)

const earthRadiusKm = 6371.0

// Index is an in-memory set of driver positions answering nearest-first
// queries. The fallback layer loads it with seed drivers.
type Index struct {
	mu      sync.RWMutex
	drivers map[string]models.NearbyDriver
}

func NewIndex() *Index {
	return &Index{drivers: make(map[string]models.NearbyDriver)}
}

func (g *Index) Upsert(d models.NearbyDriver) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.drivers[d.DriverID] = d
}

func (g *Index) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.drivers)
}

// Nearby returns up to limit drivers within radiusKm of (lat, lng), nearest
// first, with Distance set in km rounded to 0.1. radiusKm <= 0 means no cap.
func (g *Index) Nearby(lat, lng, radiusKm float64, limit int) []models.NearbyDriver {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]models.NearbyDriver, 0, len(g.drivers))
	for _, d := range g.drivers {
		dist := Haversine(lat, lng, d.Location.Lat, d.Location.Lng)
		if radiusKm > 0 && dist > radiusKm {
			continue
		}
		d.Distance = math.Round(dist*10) / 10
		out = append(out, d)
	}
	// ties broken by id so results are stable
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].DriverID < out[j].DriverID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Haversine distance in kilometers
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Distance is Haversine over two model locations.
func Distance(a, b models.Location) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// ValidPoint reports whether lat/lng are finite and inside WGS84 bounds.
func ValidPoint(p models.Location) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
