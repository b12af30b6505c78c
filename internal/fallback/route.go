package fallback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/ridepool-client/internal/models"
)

type SegmentKind int

const (
	Literal SegmentKind = iota
	Param
)

// Segment is one slash-separated piece of a route pattern. For Param the
// Value is the parameter name without the leading colon.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Request is everything a handler may look at. Handlers must not keep it.
type Request struct {
	Method   string
	Path     string
	Params   Params
	Identity *models.Identity
	Now      time.Time
	// NewID returns a fresh demo identifier for kind, e.g. demo-booking-1a2b3c4d.
	NewID func(kind string) string
	Ctx   context.Context
}

// Handler builds the data of a synthetic envelope.
type Handler func(Request) (any, error)

// Route maps (Method, pattern) to a handler. Roles lists who may call it;
// Authenticated without Roles admits any signed-in identity. A route with
// neither is open.
type Route struct {
	Method        string
	Pattern       string
	Segments      []Segment
	Roles         []models.Role
	Authenticated bool
	Handler       Handler
}

// NewRoute parses pattern into segments. ":name" segments become parameters.
func NewRoute(method, pattern string, h Handler, roles ...models.Role) Route {
	return Route{
		Method:   strings.ToUpper(method),
		Pattern:  CleanPath(pattern),
		Segments: ParseSegments(pattern),
		Roles:    roles,
		Handler:  h,
	}
}

// RequireAuth marks r as needing any authenticated identity.
func (r Route) RequireAuth() Route {
	r.Authenticated = true
	return r
}

func (r Route) String() string { return r.Method + " " + r.Pattern }

func (r Route) static() bool {
	for _, s := range r.Segments {
		if s.Kind == Param {
			return false
		}
	}
	return true
}

// match reports whether parts has the route's shape and returns the bound
// parameters.
func (r Route) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(r.Segments) {
		return nil, false
	}
	var bound map[string]string
	for i, s := range r.Segments {
		switch s.Kind {
		case Literal:
			if parts[i] != s.Value {
				return nil, false
			}
		case Param:
			if parts[i] == "" {
				return nil, false
			}
			if bound == nil {
				bound = make(map[string]string, 2)
			}
			bound[s.Value] = parts[i]
		}
	}
	return bound, true
}

func (r Route) allows(id *models.Identity) bool {
	if len(r.Roles) == 0 && !r.Authenticated {
		return true
	}
	if id == nil {
		return false
	}
	if len(r.Roles) == 0 {
		return true
	}
	for _, role := range r.Roles {
		if id.Role() == role {
			return true
		}
	}
	return false
}

func (r Route) validate() error {
	if r.Method == "" {
		return fmt.Errorf("route %q: method is required", r.Pattern)
	}
	if r.Handler == nil {
		return fmt.Errorf("route %s: handler is required", r)
	}
	seen := make(map[string]bool)
	for _, s := range r.Segments {
		if s.Kind != Param {
			continue
		}
		if s.Value == "" {
			return fmt.Errorf("route %s: unnamed parameter", r)
		}
		if seen[s.Value] {
			return fmt.Errorf("route %s: duplicate parameter %q", r, s.Value)
		}
		seen[s.Value] = true
	}
	return nil
}

func ParseSegments(pattern string) []Segment {
	parts := splitPath(CleanPath(pattern))
	segs := make([]Segment, len(parts))
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			segs[i] = Segment{Kind: Param, Value: p[1:]}
			continue
		}
		segs[i] = Segment{Kind: Literal, Value: p}
	}
	return segs
}

// CleanPath strips any query or fragment, collapses repeated slashes and
// drops a trailing slash. The result always starts with "/".
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	parts := splitPath(p)
	return "/" + strings.Join(parts, "/")
}

func splitPath(p string) []string {
	raw := strings.Split(p, "/")
	out := raw[:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
