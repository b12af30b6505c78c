// Package realtime is the client side of the ride event channel. Frames are
// JSON objects {"event": name, "data": {...}} over a websocket.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/models"
	"github.com/example/ridepool-client/internal/observability"
)

// outgoing
const (
	EventJoinRoom         = "join_room"
	EventLeaveRoom        = "leave_room"
	EventJoinRideRoom     = "join_ride_room"
	EventLeaveRideRoom    = "leave_ride_room"
	EventLocationUpdate   = "location_update"
	EventRideStatusUpdate = "ride_status_update"
)

// incoming
const (
	EventDriverLocation    = "driver_location"
	EventRideStatusChanged = "ride_status_changed"
	EventNewRideRequest    = "new_ride_request"
	EventRideAccepted      = "ride_accepted"
	EventRideStarted       = "ride_started"
	EventRideCompleted     = "ride_completed"
	EventPoolMatchFound    = "pool_match_found"
)

const (
	DefaultPath  = "/ws"
	writeTimeout = 5 * time.Second
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Availability interface {
	State() models.AvailabilityState
}

type Options struct {
	// URL is the socket server base, http(s) or ws(s).
	URL    string
	Path   string
	Dialer *websocket.Dialer
	Logger zerolog.Logger
}

type room struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// Client keeps at most one connection. While the backend is marked
// unreachable it does not dial and silently drops outgoing frames.
type Client struct {
	url    string
	dialer *websocket.Dialer
	avail  Availability
	log    zerolog.Logger
	hub    *Hub

	mu    sync.Mutex
	conn  *websocket.Conn
	room  *room
	rides map[string]bool
}

func NewClient(opts Options, avail Availability) (*Client, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	}
	target, err := socketURL(opts.URL, opts.Path)
	if err != nil {
		return nil, err
	}
	return &Client{
		url:    target,
		dialer: opts.Dialer,
		avail:  avail,
		log:    opts.Logger,
		hub:    NewHub(),
		rides:  make(map[string]bool),
	}, nil
}

func (c *Client) Hub() *Hub { return c.hub }

func (c *Client) Subscribe(event string, fn Handler) *Subscription {
	return c.hub.Subscribe(event, fn)
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials unless already connected or the backend is unreachable.
// Room memberships are re-sent on every new connection; if that fails the
// connection is dropped and the client stays disconnected.
func (c *Client) Connect(ctx context.Context) error {
	if c.avail != nil && !c.avail.State().Reachable {
		c.log.Debug().Str("url", c.url).Msg("backend unreachable, realtime stays offline")
		return nil
	}
	if c.Connected() {
		return nil
	}
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("realtime dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		// lost a race with another Connect
		conn.Close()
		return nil
	}
	c.conn = conn
	if err := c.rejoinLocked(); err != nil {
		c.conn = nil
		conn.Close()
		return err
	}
	c.log.Info().Str("url", c.url).Msg("realtime connected")
	go c.readLoop(conn)
	return nil
}

func (c *Client) rejoinLocked() error {
	if c.room != nil {
		if err := c.writeLocked(EventJoinRoom, c.room); err != nil {
			return err
		}
	}
	for id := range c.rides {
		if err := c.writeLocked(EventJoinRideRoom, map[string]string{"rideId": id}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return conn.Close()
}

// Emit sends one frame. Without a connection the frame is dropped.
func (c *Client) Emit(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(event, data)
}

func (c *Client) JoinRoom(userID, kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = &room{UserID: userID, Type: kind}
	return c.writeLocked(EventJoinRoom, c.room)
}

func (c *Client) LeaveRoom(userID, kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room != nil && c.room.UserID == userID && c.room.Type == kind {
		c.room = nil
	}
	return c.writeLocked(EventLeaveRoom, room{UserID: userID, Type: kind})
}

func (c *Client) JoinRideRoom(rideID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rides[rideID] = true
	return c.writeLocked(EventJoinRideRoom, map[string]string{"rideId": rideID})
}

func (c *Client) LeaveRideRoom(rideID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rides, rideID)
	return c.writeLocked(EventLeaveRideRoom, map[string]string{"rideId": rideID})
}

func (c *Client) UpdateLocation(driverID string, lat, lng float64, rideID string) error {
	return c.Emit(EventLocationUpdate, models.LocationUpdateEvent{DriverID: driverID, Lat: lat, Lng: lng, RideID: rideID})
}

func (c *Client) UpdateRideStatus(rideID, status string) error {
	return c.Emit(EventRideStatusUpdate, map[string]string{"rideId": rideID, "status": status})
}

func (c *Client) writeLocked(event string, data any) error {
	if c.conn == nil {
		observability.RealtimeEvents.WithLabelValues("dropped", event).Inc()
		c.log.Debug().Str("event", event).Msg("realtime offline, frame dropped")
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(Frame{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	observability.RealtimeEvents.WithLabelValues("out", event).Inc()
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			conn.Close()
			c.log.Debug().Err(err).Msg("realtime disconnected")
			return
		}
		if f.Event == "" {
			continue
		}
		observability.RealtimeEvents.WithLabelValues("in", f.Event).Inc()
		c.hub.Dispatch(f.Event, f.Data)
	}
}

func socketURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("realtime: invalid socket url %q", base)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("realtime: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}
