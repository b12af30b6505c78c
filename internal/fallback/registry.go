package fallback

import (
	"errors"
	"fmt"
	"strings"
)

// Registry is built once and read-only afterwards, so lookups need no lock.
type Registry struct {
	static   map[string]Route
	patterns []Route
}

func NewRegistry(routes []Route) (*Registry, error) {
	reg := &Registry{static: make(map[string]Route)}
	seen := make(map[string]bool, len(routes))
	var errs []error
	for _, r := range routes {
		r.Method = strings.ToUpper(r.Method)
		if err := r.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		key := r.String()
		if seen[key] {
			errs = append(errs, fmt.Errorf("route %s registered twice", key))
			continue
		}
		seen[key] = true
		if r.static() {
			reg.static[key] = r
			continue
		}
		reg.patterns = append(reg.patterns, r)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

// Match finds the route for method and an already cleaned path. Placeholder
// free routes win on an exact hit; otherwise pattern routes are tried in
// registration order.
func (reg *Registry) Match(method, path string) (Route, map[string]string, bool) {
	method = strings.ToUpper(method)
	if r, ok := reg.static[method+" "+path]; ok {
		return r, nil, true
	}
	parts := splitPath(path)
	for _, r := range reg.patterns {
		if r.Method != method {
			continue
		}
		if bound, ok := r.match(parts); ok {
			return r, bound, true
		}
	}
	return Route{}, nil, false
}

// UnmatchedLabel stands in for paths no route knows, so labels built from
// request paths stay a bounded set.
const UnmatchedLabel = "unmatched"

// Label returns the pattern of the route that would serve method and path,
// or UnmatchedLabel. It is meant for metric and log labels.
func (reg *Registry) Label(method, path string) string {
	r, _, ok := reg.Match(method, CleanPath(path))
	if !ok {
		return UnmatchedLabel
	}
	return r.Pattern
}

func (reg *Registry) Len() int { return len(reg.static) + len(reg.patterns) }
