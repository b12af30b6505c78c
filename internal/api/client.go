// Package api offers typed calls over the gateway for the screens a ridepool
// client has: booking, pooling, driver work and the admin dashboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/example/ridepool-client/internal/fare"
	"github.com/example/ridepool-client/internal/models"
)

var ErrInvalidRequest = errors.New("invalid request")

// Caller is satisfied by *gateway.Gateway.
type Caller interface {
	Send(ctx context.Context, method, path string, query url.Values, body any) (models.Envelope, error)
}

type Client struct {
	gw       Caller
	validate *validator.Validate
}

func New(gw Caller) *Client {
	return &Client{gw: gw, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) apply(q url.Values) {
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

type BookingList struct {
	Rides      []models.Booking  `json:"rides"`
	Pagination models.Pagination `json:"pagination"`
}

type RideRequestList struct {
	Requests   []models.RideRequest `json:"requests"`
	Pagination models.Pagination    `json:"pagination"`
}

type DriverProfile struct {
	Driver models.Driver `json:"driver"`
	User   models.User   `json:"user"`
}

type PoolMatches struct {
	Matches  []models.PoolMatch `json:"matches"`
	FareInfo models.FareInfo    `json:"fareInfo"`
}

type Acceptance struct {
	RideID    string `json:"rideId"`
	BookingID string `json:"bookingId"`
	Message   string `json:"message"`
}

type Dashboard struct {
	Metrics     models.DashboardMetrics `json:"metrics"`
	RecentRides []models.Ride           `json:"recentRides"`
}

func (c *Client) RequestRide(ctx context.Context, b models.BookingCreate) (models.BookingReceipt, error) {
	if err := c.validate.Struct(b); err != nil {
		return models.BookingReceipt{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return call[models.BookingReceipt](ctx, c, http.MethodPost, "/api/user/ride/request", nil, b)
}

// UserRides lists the caller's bookings. An empty status lists all of them.
func (c *Client) UserRides(ctx context.Context, status string, p Page) (BookingList, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	p.apply(q)
	return call[BookingList](ctx, c, http.MethodGet, "/api/user/rides", q, nil)
}

func (c *Client) CancelRide(ctx context.Context, bookingID string) (models.Booking, error) {
	out, err := call[struct {
		Booking models.Booking `json:"booking"`
	}](ctx, c, http.MethodPut, "/api/user/rides/"+url.PathEscape(bookingID)+"/cancel", nil, nil)
	return out.Booking, err
}

// NearbyDrivers lists drivers around a point. radiusKm <= 0 leaves the
// radius to the server.
func (c *Client) NearbyDrivers(ctx context.Context, at models.Location, radiusKm float64) ([]models.NearbyDriver, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	if radiusKm > 0 {
		q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	}
	out, err := call[struct {
		Drivers []models.NearbyDriver `json:"drivers"`
	}](ctx, c, http.MethodGet, "/api/rides/nearby-drivers", q, nil)
	return out.Drivers, err
}

func (c *Client) AvailablePools(ctx context.Context) ([]models.AvailablePool, error) {
	out, err := call[struct {
		Pools []models.AvailablePool `json:"pools"`
	}](ctx, c, http.MethodGet, "/api/rides/available-pools", nil, nil)
	return out.Pools, err
}

func (c *Client) JoinPool(ctx context.Context, poolID string) (string, error) {
	out, err := call[struct {
		Message string `json:"message"`
	}](ctx, c, http.MethodPost, "/api/rides/join-pool/"+url.PathEscape(poolID), nil, nil)
	return out.Message, err
}

func (c *Client) FindPoolMatches(ctx context.Context, pickup, dropoff models.LocationWithAddress) (PoolMatches, error) {
	body := models.BookingCreate{PickupLocation: pickup, DropoffLocation: dropoff, WantPooling: true}
	if err := c.validate.Struct(body); err != nil {
		return PoolMatches{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return call[PoolMatches](ctx, c, http.MethodPost, "/api/rides/match", nil, body)
}

func (c *Client) DriverProfile(ctx context.Context) (DriverProfile, error) {
	return call[DriverProfile](ctx, c, http.MethodGet, "/api/driver/profile", nil, nil)
}

func (c *Client) SetDriverAvailability(ctx context.Context, available bool) (models.Driver, error) {
	out, err := call[struct {
		Driver models.Driver `json:"driver"`
	}](ctx, c, http.MethodPut, "/api/driver/profile", nil, map[string]any{"isAvailable": available})
	return out.Driver, err
}

func (c *Client) RideRequests(ctx context.Context, p Page) (RideRequestList, error) {
	q := url.Values{}
	p.apply(q)
	return call[RideRequestList](ctx, c, http.MethodGet, "/api/driver/ride-requests", q, nil)
}

func (c *Client) AcceptRide(ctx context.Context, bookingID string) (Acceptance, error) {
	return call[Acceptance](ctx, c, http.MethodPost, "/api/driver/ride/"+url.PathEscape(bookingID)+"/accept", nil, nil)
}

func (c *Client) RejectRide(ctx context.Context, bookingID string) error {
	_, err := c.gw.Send(ctx, http.MethodPost, "/api/driver/ride/"+url.PathEscape(bookingID)+"/reject", nil, nil)
	return err
}

// ActiveRide returns nil when the driver has no ride in progress.
func (c *Client) ActiveRide(ctx context.Context) (*models.Ride, error) {
	out, err := call[struct {
		Ride *models.Ride `json:"ride"`
	}](ctx, c, http.MethodGet, "/api/driver/active-ride", nil, nil)
	return out.Ride, err
}

func (c *Client) AdminDashboard(ctx context.Context) (Dashboard, error) {
	return call[Dashboard](ctx, c, http.MethodGet, "/api/admin/dashboard", nil, nil)
}

// EstimateFare prices a trip locally without a backend call.
func (c *Client) EstimateFare(pickup, dropoff models.Location, pooling bool) models.FareInfo {
	return fare.Estimate(pickup, dropoff, pooling)
}

func call[T any](ctx context.Context, c *Client, method, path string, q url.Values, body any) (T, error) {
	var zero T
	env, err := c.gw.Send(ctx, method, path, q, body)
	if err != nil {
		return zero, err
	}
	out, err := models.DecodeData[T](env)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return out, nil
}
