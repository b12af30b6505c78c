package fallback

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/example/ridepool-client/internal/geo"
	"github.com/example/ridepool-client/internal/models"
)

// Params holds query values, decoded JSON body fields and bound path
// parameters, in increasing order of precedence.
type Params map[string]any

func (p Params) String(key string) (string, bool) {
	switch v := p[key].(type) {
	case string:
		return v, v != ""
	case []string:
		if len(v) > 0 && v[0] != "" {
			return v[0], true
		}
	case fmt.Stringer:
		return v.String(), true
	case float64, bool, int:
		return fmt.Sprint(v), true
	}
	return "", false
}

func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	if s, ok := p.String(key); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

const maxParamInt = math.MaxInt32

// Int returns def when key is absent, malformed, not finite or below one.
// Larger values are capped at math.MaxInt32.
func (p Params) Int(key string, def int) int {
	f, ok := p.Float(key)
	if !ok || math.IsNaN(f) || f < 1 {
		return def
	}
	if f > maxParamInt {
		return maxParamInt
	}
	return int(f)
}

func (p Params) Bool(key string) (bool, bool) {
	if b, ok := p[key].(bool); ok {
		return b, true
	}
	if s, ok := p.String(key); ok {
		b, err := strconv.ParseBool(s)
		return b, err == nil
	}
	return false, false
}

// Location decodes key as {lat, lng, address?} and checks the bounds.
func (p Params) Location(key string) (models.LocationWithAddress, error) {
	var out models.LocationWithAddress
	v, ok := p[key]
	if !ok || v == nil {
		return out, fmt.Errorf("%w: %s is required", ErrInvalidParams, key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidParams, key, err)
	}
	var probe struct {
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
		Address string   `json:"address"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidParams, key, err)
	}
	if probe.Lat == nil || probe.Lng == nil {
		return out, fmt.Errorf("%w: %s needs lat and lng", ErrInvalidParams, key)
	}
	out = models.LocationWithAddress{Lat: *probe.Lat, Lng: *probe.Lng, Address: probe.Address}
	if !geo.ValidPoint(out.Point()) {
		return out, fmt.Errorf("%w: %s is out of range", ErrInvalidParams, key)
	}
	return out, nil
}

// MaxPageSize caps the limit a list route honours.
const MaxPageSize = 100

// paginate slices items by the page and limit params. Pages past the end are
// empty.
func paginate[T any](items []T, p Params) ([]T, models.Pagination) {
	page := p.Int("page", 1)
	limit := min(p.Int("limit", 10), MaxPageSize)
	total := len(items)
	pages := max((total+limit-1)/limit, 1)

	start, end := total, total
	if page-1 < pages {
		start = (page - 1) * limit
		end = min(start+limit, total)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, models.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
