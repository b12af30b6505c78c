package fallback

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/models"
	"github.com/example/ridepool-client/internal/observability"
)

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrOfflineUnsupported = errors.New("operation needs the backend")
	ErrInvalidParams      = errors.New("invalid parameters")
	ErrNotFound           = errors.New("not found in demo data")
)

const DefaultMessage = "Demo mode - operation simulated"

// IdentitySource yields the caller's identity, or nil when signed out.
type IdentitySource interface {
	Load(ctx context.Context) (*models.Identity, error)
}

type Options struct {
	Now    func() time.Time
	NewID  func(kind string) string
	Logger zerolog.Logger
}

// Responder answers requests locally, in the backend's envelope format,
// from a route table over the seed dataset.
type Responder struct {
	routes *Registry
	ids    IdentitySource
	now    func() time.Time
	newID  func(string) string
	log    zerolog.Logger
}

func NewResponder(routes *Registry, ids IdentitySource, opts Options) *Responder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = NewDemoID
	}
	return &Responder{routes: routes, ids: ids, now: opts.Now, newID: opts.NewID, log: opts.Logger}
}

// NewDemoID returns ids shaped like demo-<kind>-<8 hex>.
func NewDemoID(kind string) string {
	return fmt.Sprintf("demo-%s-%s", kind, uuid.New().String()[:8])
}

// Resolve produces the synthetic envelope for method and path. Unknown
// routes get the generic demo envelope rather than an error.
func (r *Responder) Resolve(ctx context.Context, method, path string, params map[string]any) (models.Envelope, error) {
	method = strings.ToUpper(method)
	clean := CleanPath(path)
	merged := make(Params, len(params)+2)
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if q, err := url.ParseQuery(path[i+1:]); err == nil {
			for k, v := range q {
				if len(v) > 0 {
					merged[k] = v[0]
				}
			}
		}
	}
	for k, v := range params {
		merged[k] = v
	}

	route, bound, ok := r.routes.Match(method, clean)
	if !ok {
		observability.FallbackResolutions.WithLabelValues(method, "unmatched").Inc()
		r.log.Debug().Str("method", method).Str("path", clean).Msg("no demo route, generic response")
		return models.NewEnvelope(map[string]string{"message": DefaultMessage}, "")
	}
	observability.FallbackResolutions.WithLabelValues(method, route.Pattern).Inc()

	id := r.identity(ctx)
	if !route.allows(id) {
		return models.Envelope{}, fmt.Errorf("%s: %w", route, ErrAccessDenied)
	}

	for k, v := range bound {
		merged[k] = v
	}
	data, err := route.Handler(Request{
		Method:   method,
		Path:     clean,
		Params:   merged,
		Identity: id,
		Now:      r.now().UTC(),
		NewID:    r.newID,
		Ctx:      ctx,
	})
	if err != nil {
		return models.Envelope{}, fmt.Errorf("%s: %w", route, err)
	}
	return models.NewEnvelope(data, "")
}

// Label names the route method and path resolve to, for metrics.
func (r *Responder) Label(method, path string) string {
	return r.routes.Label(method, path)
}

func (r *Responder) identity(ctx context.Context) *models.Identity {
	if r.ids == nil {
		return nil
	}
	id, err := r.ids.Load(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("load identity for demo response")
		return nil
	}
	return id
}
