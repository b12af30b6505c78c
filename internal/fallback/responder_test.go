package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/models"
)

type staticIdentity struct {
	id  *models.Identity
	err error
}

func (s staticIdentity) Load(context.Context) (*models.Identity, error) { return s.id, s.err }

func identityFor(role models.Role) *models.Identity {
	for _, u := range Seed().DemoUsers() {
		if u.Role == role {
			return &models.Identity{User: u, AuthToken: "tok", Demo: true}
		}
	}
	return nil
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestResponder(t *testing.T, id *models.Identity) *Responder {
	t.Helper()
	r, err := NewDefault(staticIdentity{id: id}, Options{
		Now:    func() time.Time { return fixedNow },
		NewID:  func(kind string) string { return "demo-" + kind + "-00000000" },
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	return r
}

func decode[T any](t *testing.T, env models.Envelope) T {
	t.Helper()
	if !env.Success {
		t.Fatalf("expected success envelope, got %+v", env)
	}
	v, err := models.DecodeData[T](env)
	if err != nil {
		t.Fatalf("decode: %v (%s)", err, env.Data)
	}
	return v
}

func TestUnmatchedRouteGetsGenericEnvelope(t *testing.T) {
	r := newTestResponder(t, nil)
	env, err := r.Resolve(context.Background(), "delete", "/api/something/else", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := decode[map[string]string](t, env)
	if got["message"] != DefaultMessage {
		t.Fatalf("unexpected message %q", got["message"])
	}
}

func TestUserRidesStatusFilterAndPagination(t *testing.T) {
	r := newTestResponder(t, identityFor(models.RoleRider))
	env, err := r.Resolve(context.Background(), "GET", "/api/user/rides", map[string]any{"status": "completed"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := decode[struct {
		Rides      []models.Booking  `json:"rides"`
		Pagination models.Pagination `json:"pagination"`
	}](t, env)
	if len(got.Rides) != 2 {
		t.Fatalf("expected 2 completed rides, got %d", len(got.Rides))
	}
	for _, b := range got.Rides {
		if b.Status != "completed" {
			t.Fatalf("filter leaked %q", b.Status)
		}
	}
	if got.Pagination != (models.Pagination{Page: 1, Limit: 10, Total: 2, Pages: 1}) {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}

	env, err = r.Resolve(context.Background(), "GET", "/api/user/rides?page=2&limit=2", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got = decode[struct {
		Rides      []models.Booking  `json:"rides"`
		Pagination models.Pagination `json:"pagination"`
	}](t, env)
	if len(got.Rides) != 1 || got.Rides[0].ID != "booking-003" {
		t.Fatalf("expected booking-003 on page 2, got %+v", got.Rides)
	}
	if got.Pagination.Pages != 2 || got.Pagination.Total != 3 {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}
}

func TestRideRequestPricesTheTrip(t *testing.T) {
	rider := identityFor(models.RoleRider)
	r := newTestResponder(t, rider)
	env, err := r.Resolve(context.Background(), "POST", "/api/user/ride/request", map[string]any{
		"pickupLocation":  map[string]any{"lat": 33.6844, "lng": 73.0479, "address": "Blue Area"},
		"dropoffLocation": map[string]any{"lat": 33.7294, "lng": 73.0931},
		"wantPooling":     true,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := decode[models.BookingReceipt](t, env)
	if got.BookingID != "demo-booking-00000000" {
		t.Fatalf("unexpected booking id %q", got.BookingID)
	}
	if got.UserID != rider.UserID() {
		t.Fatalf("expected user id %q, got %q", rider.UserID(), got.UserID)
	}
	if got.Status != "requested" || got.PickupLocation.Address != "Blue Area" {
		t.Fatalf("unexpected receipt %+v", got)
	}
	if got.FareInfo.Distance != 6.5 || got.FareInfo.TotalFare != 246 {
		t.Fatalf("unexpected fare %+v", got.FareInfo)
	}
	if got.CreatedAt != fixedNow.Format(time.RFC3339) {
		t.Fatalf("unexpected createdAt %q", got.CreatedAt)
	}
}

func TestRideRequestRejectsBadCoordinates(t *testing.T) {
	r := newTestResponder(t, nil)
	_, err := r.Resolve(context.Background(), "POST", "/api/user/ride/request", map[string]any{
		"pickupLocation":  map[string]any{"lat": 133.0, "lng": 73.0},
		"dropoffLocation": map[string]any{"lat": 33.7, "lng": 73.0},
	})
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}

	_, err = r.Resolve(context.Background(), "POST", "/api/user/ride/request", map[string]any{
		"pickupLocation": map[string]any{"lat": 33.6},
	})
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for missing fields, got %v", err)
	}
}

func TestRoleGuard(t *testing.T) {
	cases := []struct {
		name   string
		id     *models.Identity
		method string
		path   string
		denied bool
	}{
		{"rider on driver route", identityFor(models.RoleRider), "GET", "/api/driver/ride-requests", true},
		{"driver on driver route", identityFor(models.RoleDriver), "GET", "/api/driver/ride-requests", false},
		{"admin on driver route", identityFor(models.RoleAdmin), "GET", "/api/driver/rides", false},
		{"driver on admin route", identityFor(models.RoleDriver), "GET", "/api/admin/dashboard", true},
		{"admin on admin route", identityFor(models.RoleAdmin), "GET", "/api/admin/dashboard", false},
		{"anonymous on admin route", nil, "GET", "/api/admin/users", true},
		{"anonymous on me", nil, "GET", "/api/auth/me", true},
		{"anonymous on open route", nil, "GET", "/api/rides/available-pools", false},
		{"rider on pattern admin route", identityFor(models.RoleRider), "PUT", "/api/admin/user/user-002", true},
	}
	for _, tc := range cases {
		r := newTestResponder(t, tc.id)
		_, err := r.Resolve(context.Background(), tc.method, tc.path, nil)
		if tc.denied && !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("%s: expected ErrAccessDenied, got %v", tc.name, err)
		}
		if !tc.denied && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestIdentityLoadErrorIsTreatedAsAnonymous(t *testing.T) {
	r, err := NewDefault(staticIdentity{err: errors.New("disk gone")}, Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "GET", "/api/admin/dashboard", nil); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestLoginAndRegisterAreNotSimulated(t *testing.T) {
	r := newTestResponder(t, nil)
	for _, p := range []string{"/api/auth/login", "/api/auth/register"} {
		if _, err := r.Resolve(context.Background(), "POST", p, nil); !errors.Is(err, ErrOfflineUnsupported) {
			t.Fatalf("%s: expected ErrOfflineUnsupported, got %v", p, err)
		}
	}
}

func TestLiteralSiblingWinsOverRideIDPattern(t *testing.T) {
	r := newTestResponder(t, nil)
	env, err := r.Resolve(context.Background(), "GET", "/api/rides/available-pools/", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := decode[map[string][]models.AvailablePool](t, env)
	if len(got["pools"]) != 3 {
		t.Fatalf("expected 3 pools, got %d", len(got["pools"]))
	}

	env, err = r.Resolve(context.Background(), "GET", "/api/rides/ride-d002", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ride := decode[map[string]models.Ride](t, env)["ride"]
	if ride.ID != "ride-d002" || len(ride.Passengers) != 2 {
		t.Fatalf("unexpected ride %+v", ride)
	}

	if _, err := r.Resolve(context.Background(), "GET", "/api/rides/nope-404", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPoolLookupFallsBackToFirstPool(t *testing.T) {
	r := newTestResponder(t, nil)
	env, err := r.Resolve(context.Background(), "GET", "/api/rides/pool/pool-003", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := decode[map[string]models.AvailablePool](t, env)["pool"]; got.ID != "pool-003" {
		t.Fatalf("expected pool-003, got %s", got.ID)
	}
	env, err = r.Resolve(context.Background(), "GET", "/api/rides/pool/unknown", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := decode[map[string]models.AvailablePool](t, env)["pool"]; got.ID != "pool-001" {
		t.Fatalf("expected pool-001 fallback, got %s", got.ID)
	}
}

func TestNearbyDriversSortedFromPoint(t *testing.T) {
	r := newTestResponder(t, nil)
	env, err := r.Resolve(context.Background(), "GET", "/api/rides/nearby-drivers", map[string]any{"lat": "33.7001", "lng": "73.0601"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	drivers := decode[map[string][]models.NearbyDriver](t, env)["drivers"]
	if len(drivers) != 3 || drivers[0].DriverID != "driver-003" {
		t.Fatalf("expected driver-003 nearest, got %+v", drivers)
	}
	if drivers[0].Distance > drivers[1].Distance || drivers[1].Distance > drivers[2].Distance {
		t.Fatalf("expected ascending distance, got %+v", drivers)
	}
}

func TestDriverAcceptBindsPathParam(t *testing.T) {
	r := newTestResponder(t, identityFor(models.RoleDriver))
	env, err := r.Resolve(context.Background(), "POST", "/api/driver/ride/booking-100/accept", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := decode[map[string]string](t, env)
	if got["bookingId"] != "booking-100" || got["rideId"] != "demo-ride-00000000" {
		t.Fatalf("unexpected accept payload %v", got)
	}
}

func TestRideStatusValidated(t *testing.T) {
	r := newTestResponder(t, identityFor(models.RoleDriver))
	_, err := r.Resolve(context.Background(), "PUT", "/api/driver/ride/ride-d001/status", map[string]any{"status": "teleported"})
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "PUT", "/api/driver/ride/ride-d001/status", map[string]any{"status": "completed"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSyntheticWritesDoNotMutateSeed(t *testing.T) {
	r := newTestResponder(t, identityFor(models.RoleDriver))
	if _, err := r.Resolve(context.Background(), "PUT", "/api/driver/profile", map[string]any{"isAvailable": false}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	env, err := r.Resolve(context.Background(), "GET", "/api/driver/profile", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got struct {
		Driver models.Driver `json:"driver"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Driver.IsAvailable {
		t.Fatalf("synthetic write leaked into the seed")
	}
}

func TestDatasetAccessorsReturnCopies(t *testing.T) {
	ds := Seed()
	rides := ds.DriverRides()
	rides[0].Passengers[0].Fare = 1
	rides[0].Status = "cancelled"
	again := ds.DriverRides()
	if again[0].Passengers[0].Fare != 350 || again[0].Status != "completed" {
		t.Fatalf("seed mutated through accessor: %+v", again[0])
	}

	p := ds.DriverProfile()
	p.CurrentLocation.Lat = 0
	if ds.DriverProfile().CurrentLocation.Lat == 0 {
		t.Fatalf("driver location shared with seed")
	}
}

func TestAdminPayments(t *testing.T) {
	r := newTestResponder(t, identityFor(models.RoleAdmin))
	env, err := r.Resolve(context.Background(), "GET", "/api/admin/payments", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got struct {
		Summary    models.PaymentSummary `json:"summary"`
		Payments   []models.Payment      `json:"payments"`
		Pagination models.Pagination     `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Summary.PooledRides != 423 || len(got.Payments) != 4 || got.Pagination.Total != 4 {
		t.Fatalf("unexpected payments %+v", got)
	}
}

func TestMatchPools(t *testing.T) {
	r := newTestResponder(t, nil)
	env, err := r.Resolve(context.Background(), "POST", "/api/rides/match", map[string]any{
		"pickupLocation":  map[string]any{"lat": 33.6850, "lng": 73.0480},
		"dropoffLocation": map[string]any{"lat": 33.5660, "lng": 73.0170},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got struct {
		Matches  []models.PoolMatch `json:"matches"`
		FareInfo models.FareInfo    `json:"fareInfo"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Matches) == 0 || got.Matches[0].RideID != "pool-001" {
		t.Fatalf("expected pool-001 as best match, got %+v", got.Matches)
	}
	if got.FareInfo.Discount == 0 {
		t.Fatalf("expected pooled fare, got %+v", got.FareInfo)
	}
}

func TestMeReturnsUserUnwrapped(t *testing.T) {
	id := identityFor(models.RoleDriver)
	r := newTestResponder(t, id)
	env, err := r.Resolve(context.Background(), "GET", "/api/auth/me", nil)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	u := decode[models.User](t, env)
	if u.ID != id.UserID() || u.Role != models.RoleDriver {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestPaginationClampsOversizedValues(t *testing.T) {
	type page struct {
		Rides      []models.Booking  `json:"rides"`
		Users      []models.User     `json:"users"`
		Pagination models.Pagination `json:"pagination"`
	}
	cases := []struct {
		name     string
		role     models.Role
		path     string
		params   map[string]any
		wantPage int
		wantLen  int
	}{
		{"huge limit", models.RoleRider, "/api/user/rides", map[string]any{"limit": "1e30"}, 1, 3},
		{"page past end with huge limit", models.RoleRider, "/api/user/rides", map[string]any{"page": "4", "limit": "4000000000000000000"}, 4, 0},
		{"huge page", models.RoleRider, "/api/user/rides?page=9e18", nil, maxParamInt, 0},
		{"infinite limit", models.RoleRider, "/api/user/rides?limit=Inf", nil, 1, 3},
		{"nan page", models.RoleRider, "/api/user/rides?page=NaN", nil, 1, 3},
		{"admin users", models.RoleAdmin, "/api/admin/users", map[string]any{"page": "2", "limit": "1e300"}, 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestResponder(t, identityFor(tc.role))
			env, err := r.Resolve(context.Background(), "GET", tc.path, tc.params)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			got := decode[page](t, env)
			if got.Pagination.Limit < 1 || got.Pagination.Limit > MaxPageSize {
				t.Fatalf("limit not clamped: %+v", got.Pagination)
			}
			if got.Pagination.Page != tc.wantPage {
				t.Fatalf("expected page %d, got %+v", tc.wantPage, got.Pagination)
			}
			if n := len(got.Rides) + len(got.Users); n != tc.wantLen {
				t.Fatalf("expected %d items, got %d", tc.wantLen, n)
			}
		})
	}
}
