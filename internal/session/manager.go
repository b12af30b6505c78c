package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/gateway"
	"github.com/example/ridepool-client/internal/models"
)

var (
	ErrAlreadyAuthenticated    = errors.New("already signed in")
	ErrAuthInProgress          = errors.New("sign-in already in progress")
	ErrRegistrationUnavailable = errors.New("registration needs the backend")
	ErrValidation              = errors.New("invalid input")
)

type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is the session as the rest of the client sees it. Role and Identity
// are set only when Status is Authenticated.
type State struct {
	Status   Status
	Role     models.Role
	Identity *models.Identity
}

type Backend interface {
	Do(ctx context.Context, req gateway.Request) (models.Envelope, error)
}

type Availability interface {
	CheckNow(ctx context.Context) bool
}

type ManagerOptions struct {
	// Demo, when set, is consulted only if the backend cannot be reached.
	Demo   *DemoDirectory
	Logger zerolog.Logger
	Now    func() time.Time
}

// Manager drives sign-in, sign-out and startup resume. The authenticated
// state is read from the store every time, so a 401 clear performed by the
// gateway is observed immediately.
type Manager struct {
	store    *Store
	backend  Backend
	avail    Availability
	demo     *DemoDirectory
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time

	mu             sync.Mutex
	authenticating bool
}

func NewManager(store *Store, backend Backend, avail Availability, opts ManagerOptions) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:    store,
		backend:  backend,
		avail:    avail,
		demo:     opts.Demo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      opts.Logger,
		now:      opts.Now,
	}
}

func (m *Manager) State(ctx context.Context) State {
	m.mu.Lock()
	busy := m.authenticating
	m.mu.Unlock()
	if busy {
		return State{Status: Authenticating}
	}
	id, err := m.store.Load(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("load session")
		return State{Status: Unauthenticated}
	}
	return stateOf(id)
}

// Login tries the backend first. Only when it cannot be reached are the demo
// accounts consulted; a backend rejection is returned as is.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	if err := m.validate.Struct(creds); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := m.begin(ctx); err != nil {
		return models.Identity{}, err
	}
	defer m.end()

	env, err := m.backend.Do(ctx, gateway.Request{
		Method:     http.MethodPost,
		Path:       "/api/auth/login",
		Body:       creds,
		NoFallback: true,
	})
	switch {
	case err == nil:
		return m.establish(ctx, env)
	case errors.Is(err, gateway.ErrTransport) && m.demo != nil:
		id, derr := m.demo.Authenticate(creds.Email, creds.Password)
		if derr != nil {
			return models.Identity{}, derr
		}
		if err := m.store.Save(ctx, id); err != nil {
			return models.Identity{}, err
		}
		m.log.Info().Str("user", id.UserID()).Str("role", string(id.Role())).Msg("signed in with demo account")
		return id, nil
	default:
		return models.Identity{}, err
	}
}

// Register has no offline equivalent.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (models.Identity, error) {
	if req.Role == "" {
		req.Role = models.RoleRider
	}
	if err := m.validate.Struct(req); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := m.begin(ctx); err != nil {
		return models.Identity{}, err
	}
	defer m.end()

	env, err := m.backend.Do(ctx, gateway.Request{
		Method:     http.MethodPost,
		Path:       "/api/auth/register",
		Body:       req,
		NoFallback: true,
	})
	if errors.Is(err, gateway.ErrTransport) {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrRegistrationUnavailable, err)
	}
	if err != nil {
		return models.Identity{}, err
	}
	return m.establish(ctx, env)
}

// Logout tells the backend when it can and always clears locally.
func (m *Manager) Logout(ctx context.Context) error {
	id, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("load session for logout")
	}
	if id != nil && !id.Demo {
		_, err := m.backend.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/api/auth/logout", NoFallback: true})
		if err != nil {
			m.log.Debug().Err(err).Msg("backend logout failed, clearing locally")
		}
	}
	return m.store.Clear(ctx)
}

// Resume restores a stored session at startup. An expired token is dropped.
// With the backend reachable the identity is re-checked through
// /api/auth/me; otherwise it is kept as stored.
func (m *Manager) Resume(ctx context.Context) (State, error) {
	id, err := m.store.Load(ctx)
	if err != nil {
		return State{Status: Unauthenticated}, err
	}
	if id == nil {
		return State{Status: Unauthenticated}, nil
	}
	if TokenExpired(id.AuthToken, m.now()) {
		m.log.Info().Str("user", id.UserID()).Msg("stored token expired")
		return State{Status: Unauthenticated}, m.store.Clear(ctx)
	}
	if m.avail == nil || !m.avail.CheckNow(ctx) {
		return stateOf(id), nil
	}

	env, err := m.backend.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/auth/me", NoFallback: true})
	switch {
	case err == nil:
	case errors.Is(err, gateway.ErrUnauthorized):
		// the gateway already cleared the store
		return State{Status: Unauthenticated}, nil
	case errors.Is(err, gateway.ErrTransport):
		return stateOf(id), nil
	default:
		m.log.Warn().Err(err).Msg("verify session, keeping stored identity")
		return stateOf(id), nil
	}

	user, err := models.DecodeData[models.User](env)
	if err != nil {
		m.log.Warn().Err(err).Msg("decode /api/auth/me, keeping stored identity")
		return stateOf(id), nil
	}
	if user.Role != id.Role() {
		m.log.Warn().Str("stored", string(id.Role())).Str("backend", string(user.Role)).Msg("role changed, session dropped")
		return State{Status: Unauthenticated}, m.store.Clear(ctx)
	}
	refreshed := models.Identity{User: user, AuthToken: id.AuthToken, Demo: id.Demo}
	if err := m.store.Save(ctx, refreshed); err != nil {
		return stateOf(id), err
	}
	return stateOf(&refreshed), nil
}

func (m *Manager) begin(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.authenticating {
		return ErrAuthInProgress
	}
	id, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if id != nil {
		return ErrAlreadyAuthenticated
	}
	m.authenticating = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.authenticating = false
	m.mu.Unlock()
}

func (m *Manager) establish(ctx context.Context, env models.Envelope) (models.Identity, error) {
	auth, err := models.DecodeData[models.AuthResponse](env)
	if err != nil {
		return models.Identity{}, fmt.Errorf("decode auth response: %w", err)
	}
	id := models.Identity{User: auth.User, AuthToken: auth.Token}
	if err := m.store.Save(ctx, id); err != nil {
		return models.Identity{}, err
	}
	m.log.Info().Str("user", id.UserID()).Str("role", string(id.Role())).Msg("signed in")
	return id, nil
}

func stateOf(id *models.Identity) State {
	if id == nil {
		return State{Status: Unauthenticated}
	}
	return State{Status: Authenticated, Role: id.Role(), Identity: id}
}
