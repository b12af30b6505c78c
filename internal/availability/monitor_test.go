package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type healthServer struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
}

func newHealthServer(t *testing.T) *healthServer {
	t.Helper()
	hs := &healthServer{}
	hs.status.Store(http.StatusOK)
	hs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != HealthPath {
			http.NotFound(w, r)
			return
		}
		hs.hits.Add(1)
		w.WriteHeader(int(hs.status.Load()))
	}))
	t.Cleanup(hs.Close)
	return hs
}

func newMonitor(base string, clock *fakeClock) *Monitor {
	return New(Options{BaseURL: base, Interval: 10 * time.Second, ProbeTimeout: time.Second, Now: clock.Now, Logger: zerolog.Nop()})
}

func TestInitialStateIsOptimistic(t *testing.T) {
	m := New(Options{BaseURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	s := m.State()
	if !s.Reachable || !s.LastCheckedAt.IsZero() {
		t.Fatalf("expected reachable and unchecked, got %+v", s)
	}
}

func TestCheckNowHealthy(t *testing.T) {
	hs := newHealthServer(t)
	clock := newFakeClock()
	m := newMonitor(hs.URL, clock)

	if !m.CheckNow(context.Background()) {
		t.Fatalf("expected reachable")
	}
	if got := m.State().LastCheckedAt; !got.Equal(clock.Now()) {
		t.Fatalf("expected LastCheckedAt %v, got %v", clock.Now(), got)
	}
}

func TestCheckNowNon2xxIsUnreachable(t *testing.T) {
	hs := newHealthServer(t)
	hs.status.Store(http.StatusServiceUnavailable)
	m := newMonitor(hs.URL, newFakeClock())

	if m.CheckNow(context.Background()) {
		t.Fatalf("expected unreachable on 503")
	}
}

func TestCheckNowConnectionRefused(t *testing.T) {
	hs := newHealthServer(t)
	url := hs.URL
	hs.Close()
	m := newMonitor(url, newFakeClock())

	if m.CheckNow(context.Background()) {
		t.Fatalf("expected unreachable when nothing listens")
	}
	if m.State().Reachable {
		t.Fatalf("expected state to be updated")
	}
}

func TestCheckNowTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	m := New(Options{BaseURL: srv.URL, ProbeTimeout: 20 * time.Millisecond, Logger: zerolog.Nop()})
	start := time.Now()
	if m.CheckNow(context.Background()) {
		t.Fatalf("expected timeout to count as unreachable")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("probe did not honour its timeout")
	}
}

func TestCheckNowCancelledCallerDoesNotMarkDown(t *testing.T) {
	hs := newHealthServer(t)
	m := newMonitor(hs.URL, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !m.CheckNow(ctx) {
		t.Fatalf("cancelled caller should see the optimistic state")
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.State().LastCheckedAt.IsZero() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s := m.State()
	if s.LastCheckedAt.IsZero() {
		t.Fatalf("check never completed")
	}
	if !s.Reachable {
		t.Fatalf("healthy backend recorded unreachable after caller cancelled")
	}
	if hs.hits.Load() != 1 {
		t.Fatalf("expected one health request, got %d", hs.hits.Load())
	}
}

func TestCheckNowCachesWithinInterval(t *testing.T) {
	hs := newHealthServer(t)
	clock := newFakeClock()
	m := newMonitor(hs.URL, clock)

	m.CheckNow(context.Background())
	clock.Advance(9 * time.Second)
	m.CheckNow(context.Background())
	if got := hs.hits.Load(); got != 1 {
		t.Fatalf("expected 1 probe inside interval, got %d", got)
	}

	clock.Advance(time.Second)
	m.CheckNow(context.Background())
	if got := hs.hits.Load(); got != 2 {
		t.Fatalf("expected a new probe after interval, got %d", got)
	}
}

func TestMarkUnavailableHoldsForInterval(t *testing.T) {
	hs := newHealthServer(t)
	clock := newFakeClock()
	m := newMonitor(hs.URL, clock)

	m.MarkUnavailable()
	if m.State().Reachable {
		t.Fatalf("expected unreachable after MarkUnavailable")
	}
	if m.CheckNow(context.Background()) {
		t.Fatalf("expected cached unreachable")
	}
	if hs.hits.Load() != 0 {
		t.Fatalf("expected no probe while cached")
	}

	clock.Advance(11 * time.Second)
	if !m.CheckNow(context.Background()) {
		t.Fatalf("expected recovery once the interval elapsed")
	}
}

func TestLastCheckedAtNeverGoesBackwards(t *testing.T) {
	clock := newFakeClock()
	m := newMonitor("http://127.0.0.1:1", clock)

	m.MarkUnavailable()
	first := m.State().LastCheckedAt
	clock.Advance(-time.Minute)
	m.MarkUnavailable()
	if m.State().LastCheckedAt.Before(first) {
		t.Fatalf("LastCheckedAt moved backwards: %v < %v", m.State().LastCheckedAt, first)
	}
}

func TestConcurrentCheckNowSharesOneProbe(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newMonitor(srv.URL, newFakeClock())

	var wg sync.WaitGroup
	results := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.CheckNow(context.Background())
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for ok := range results {
		if !ok {
			t.Fatalf("expected every caller to see reachable")
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected one shared probe, got %d", got)
	}
}

func TestSubscribeNotifiesOnFlipOnly(t *testing.T) {
	hs := newHealthServer(t)
	clock := newFakeClock()
	m := newMonitor(hs.URL, clock)

	var mu sync.Mutex
	var seen []bool
	cancel := m.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s.Reachable)
		mu.Unlock()
	})
	other := 0
	cancelOther := m.Subscribe(func(State) { other++ })

	m.CheckNow(context.Background()) // reachable -> reachable, no flip
	m.MarkUnavailable()
	m.MarkUnavailable()
	clock.Advance(time.Minute)
	m.CheckNow(context.Background())

	mu.Lock()
	got := append([]bool(nil), seen...)
	mu.Unlock()
	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Fatalf("expected [false true], got %v", got)
	}

	cancel()
	cancel()
	m.MarkUnavailable()
	mu.Lock()
	n := len(seen)
	mu.Unlock()
	if n != 2 {
		t.Fatalf("cancelled subscriber still notified")
	}
	if other != 3 {
		t.Fatalf("expected the other subscriber to keep receiving, got %d", other)
	}
	cancelOther()
}

func TestStartStop(t *testing.T) {
	hs := newHealthServer(t)
	m := New(Options{BaseURL: hs.URL, Interval: 10 * time.Millisecond, ProbeTimeout: time.Second, Logger: zerolog.Nop()})

	m.Start(context.Background())
	m.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for hs.hits.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	if hs.hits.Load() < 3 {
		t.Fatalf("expected periodic probes, got %d", hs.hits.Load())
	}

	after := hs.hits.Load()
	time.Sleep(50 * time.Millisecond)
	if hs.hits.Load() != after {
		t.Fatalf("probes continued after Stop")
	}
	m.Stop()
}
