package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/models"
)

type Source interface {
	Subscribe(fn func(models.AvailabilityState)) (cancel func())
}

// Forwarder moves availability changes from a monitor to a publisher on its
// own goroutine, so a slow broker never stalls the request path. When the
// queue is full the change is dropped and logged.
type Forwarder struct {
	pub     Publisher
	backend string
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan models.AvailabilityEvent
	cancel func()
	wg     sync.WaitGroup
	once   sync.Once
}

func NewForwarder(pub Publisher, backendURL string, log zerolog.Logger) *Forwarder {
	return &Forwarder{pub: pub, backend: backendURL, log: log, queue: make(chan models.AvailabilityEvent, 64)}
}

func (f *Forwarder) Start(ctx context.Context, src Source) {
	f.cancel = src.Subscribe(func(s models.AvailabilityState) {
		ev := models.AvailabilityEvent{Reachable: s.Reachable, CheckedAt: s.LastCheckedAt, BackendURL: f.backend}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return
		}
		select {
		case f.queue <- ev:
		default:
			f.log.Warn().Bool("reachable", s.Reachable).Msg("availability event queue full, dropping")
		}
	})
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for ev := range f.queue {
			if err := f.pub.PublishAvailability(ctx, ev); err != nil {
				f.log.Error().Err(err).Bool("reachable", ev.Reachable).Msg("publish availability event")
			}
		}
	}()
}

// Stop unsubscribes, drains what is queued and waits for the worker. Changes
// delivered after Stop are ignored.
func (f *Forwarder) Stop() {
	f.once.Do(func() {
		if f.cancel != nil {
			f.cancel()
		}
		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()
		f.wg.Wait()
	})
}
