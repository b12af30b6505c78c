// Package app assembles the client core from a Config. Every component is
// built here and handed its collaborators explicitly.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/api"
	"github.com/example/ridepool-client/internal/availability"
	"github.com/example/ridepool-client/internal/config"
	"github.com/example/ridepool-client/internal/events"
	"github.com/example/ridepool-client/internal/fallback"
	"github.com/example/ridepool-client/internal/gateway"
	"github.com/example/ridepool-client/internal/httpapi"
	"github.com/example/ridepool-client/internal/models"
	"github.com/example/ridepool-client/internal/realtime"
	"github.com/example/ridepool-client/internal/session"
)

type App struct {
	Config   config.Config
	Log      zerolog.Logger
	Monitor  *availability.Monitor
	Store    *session.Store
	Fallback *fallback.Responder
	Gateway  *gateway.Gateway
	Sessions *session.Manager
	Realtime *realtime.Client
	API      *api.Client

	publisher events.Publisher
	forwarder *events.Forwarder

	mu        sync.Mutex
	unwatch   func()
	closeOnce sync.Once
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	kv, err := openKV(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(kv, log.With().Str("component", "session").Logger())

	monitor := availability.New(availability.Options{
		BaseURL:      cfg.APIURL,
		Interval:     cfg.HealthCheckInterval,
		ProbeTimeout: cfg.HealthProbeTimeout,
		Logger:       log.With().Str("component", "availability").Logger(),
	})

	fb, err := fallback.NewDefault(store, fallback.Options{Logger: log.With().Str("component", "fallback").Logger()})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build fallback routes: %w", err)
	}

	gw := gateway.New(gateway.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log.With().Str("component", "gateway").Logger(),
	}, store, monitor, fb)

	demo, err := session.NewDemoDirectory(fallback.Seed().DemoUsers(), session.DemoPassword)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build demo accounts: %w", err)
	}
	sessions := session.NewManager(store, gw, monitor, session.ManagerOptions{
		Demo:   demo,
		Logger: log.With().Str("component", "auth").Logger(),
	})

	rt, err := realtime.NewClient(realtime.Options{
		URL:    cfg.SocketURL,
		Logger: log.With().Str("component", "realtime").Logger(),
	}, monitor)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Monitor:   monitor,
		Store:     store,
		Fallback:  fb,
		Gateway:   gw,
		Sessions:  sessions,
		Realtime:  rt,
		API:       api.New(gw),
		publisher: pub,
		forwarder: events.NewForwarder(pub, cfg.APIURL, log.With().Str("component", "events").Logger()),
	}, nil
}

func openKV(ctx context.Context, cfg config.SessionConfig) (session.KV, error) {
	switch cfg.Backend {
	case "memory":
		return session.NewMemoryKV(), nil
	case "redis":
		return session.NewRedisKV(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
	case "postgres":
		return session.NewPostgresKV(ctx, cfg.PGDSN)
	case "file", "":
		return session.NewFileKV(cfg.File)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// Start begins health probing, restores any stored session and opens the
// realtime channel when the backend is up. The channel follows reachability
// from then on.
func (a *App) Start(ctx context.Context) (session.State, error) {
	a.forwarder.Start(ctx, a.Monitor)
	a.mu.Lock()
	a.unwatch = a.Monitor.Subscribe(func(s models.AvailabilityState) {
		if !s.Reachable {
			if err := a.Realtime.Close(); err != nil {
				a.Log.Debug().Err(err).Msg("close realtime")
			}
			return
		}
		go a.connectRealtime(ctx)
	})
	a.mu.Unlock()

	a.Monitor.Start(ctx)
	a.Monitor.CheckNow(ctx)

	st, err := a.Sessions.Resume(ctx)
	if err != nil {
		a.Log.Warn().Err(err).Msg("resume session")
	}
	if a.Monitor.State().Reachable {
		a.connectRealtime(ctx)
	}
	return st, err
}

func (a *App) connectRealtime(ctx context.Context) {
	if err := a.Realtime.Connect(ctx); err != nil {
		a.Log.Warn().Err(err).Msg("realtime connect")
		return
	}
	st := a.Sessions.State(ctx)
	if st.Identity == nil || !a.Realtime.Connected() {
		return
	}
	if err := a.Realtime.JoinRoom(st.Identity.UserID(), roomKind(st.Role)); err != nil {
		a.Log.Debug().Err(err).Msg("join realtime room")
	}
}

func roomKind(r models.Role) string {
	if r == models.RoleDriver {
		return "driver"
	}
	return "user"
}

// Handler is the local proxy over this app.
func (a *App) Handler() http.Handler {
	return httpapi.NewServer(a.Sessions, a.Gateway, a.Monitor, a.Log.With().Str("component", "http").Logger())
}

// Close stops background work and releases the session backend. It is safe
// to call more than once.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		if a.unwatch != nil {
			a.unwatch()
		}
		a.mu.Unlock()
		a.Monitor.Stop()
		a.forwarder.Stop()
		if err := a.Realtime.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close realtime: %w", err))
		}
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	})
	return errors.Join(errs...)
}
