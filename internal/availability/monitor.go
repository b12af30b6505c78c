// Package availability tracks whether the backend can be reached.
//
// A Monitor probes GET {base}/api/health, caches the answer for one check
// interval and tells subscribers whenever reachability flips. The request
// gateway also reports transport failures to it through MarkUnavailable.
package availability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/example/ridepool-client/internal/models"
	"github.com/example/ridepool-client/internal/observability"
)

const (
	DefaultInterval     = 10 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	HealthPath          = "/api/health"
)

type State = models.AvailabilityState

type Options struct {
	BaseURL      string
	Interval     time.Duration
	ProbeTimeout time.Duration
	Client       *http.Client
	Logger       zerolog.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

type Monitor struct {
	healthURL string
	baseURL   string
	interval  time.Duration
	timeout   time.Duration
	client    *http.Client
	log       zerolog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	state   State
	checked bool

	probes singleflight.Group

	subMu  sync.Mutex
	subs   map[uint64]func(State)
	nextID uint64

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a monitor that starts out optimistic: reachable, never checked.
func New(opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	observability.BackendReachable.Set(1)
	return &Monitor{
		healthURL: base + HealthPath,
		baseURL:   base,
		interval:  opts.Interval,
		timeout:   opts.ProbeTimeout,
		client:    opts.Client,
		log:       opts.Logger,
		now:       opts.Now,
		state:     State{Reachable: true},
		subs:      make(map[uint64]func(State)),
	}
}

func (m *Monitor) BaseURL() string { return m.baseURL }

func (m *Monitor) Interval() time.Duration { return m.interval }

// State never blocks on a probe.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CheckNow returns the cached answer while it is younger than the check
// interval and probes otherwise. Concurrent callers share one probe.
// Cancelling ctx ends the wait early but the check still runs to completion,
// so a caller that gives up never marks a healthy backend unreachable.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	if s, fresh := m.cached(); fresh {
		return s.Reachable
	}
	return m.refresh(context.WithoutCancel(ctx), ctx)
}

// MarkUnavailable records a failure observed outside the probe, typically a
// transport error on a regular request.
func (m *Monitor) MarkUnavailable() {
	m.record(false)
}

// Subscribe registers fn for reachability changes. The returned func removes
// it and is safe to call more than once.
func (m *Monitor) Subscribe(fn func(State)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// Start runs a probe immediately and then once per interval until Stop or
// ctx is done. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		m.refresh(ctx, ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.refresh(ctx, ctx)
			}
		}
	}(m.done)
}

// Stop halts the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) cached() (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.checked {
		return m.state, false
	}
	return m.state, m.now().Sub(m.state.LastCheckedAt) < m.interval
}

// refresh runs one shared health check under work and waits for it until wait
// is done. A check whose work context was cancelled records nothing.
func (m *Monitor) refresh(work, wait context.Context) bool {
	ch := m.probes.DoChan("health", func() (any, error) {
		ok := m.probe(work)
		if work.Err() != nil {
			return m.State().Reachable, nil
		}
		m.record(ok)
		return ok, nil
	})
	select {
	case res := <-ch:
		return res.Val.(bool)
	case <-wait.Done():
		return m.State().Reachable
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	ok := false
	defer func() {
		observability.HealthProbeDuration.Observe(time.Since(start).Seconds())
		result := "down"
		if ok {
			result = "up"
		}
		observability.HealthProbesTotal.WithLabelValues(result).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.healthURL, nil)
	if err != nil {
		m.log.Error().Err(err).Str("url", m.healthURL).Msg("build health probe")
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Debug().Err(err).Str("url", m.healthURL).Msg("health probe failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	ok = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		m.log.Debug().Int("status", resp.StatusCode).Str("url", m.healthURL).Msg("health probe unhealthy")
	}
	return ok
}

func (m *Monitor) record(reachable bool) {
	at := m.now()

	m.mu.Lock()
	if at.Before(m.state.LastCheckedAt) {
		at = m.state.LastCheckedAt
	}
	changed := m.state.Reachable != reachable
	m.state = State{Reachable: reachable, LastCheckedAt: at}
	m.checked = true
	s := m.state
	m.mu.Unlock()

	observability.BackendReachable.Set(observability.BoolGauge(reachable))
	if !changed {
		return
	}
	if reachable {
		m.log.Info().Str("backend", m.baseURL).Msg("backend reachable again")
	} else {
		m.log.Warn().Str("backend", m.baseURL).Msg("backend unreachable, serving demo data")
	}
	m.notify(s)
}

func (m *Monitor) notify(s State) {
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
