package realtime

import (
	"encoding/json"
	"testing"

	"github.com/example/ridepool-client/internal/models"
)

func TestHubManySubscribersCancelIndependently(t *testing.T) {
	h := NewHub()
	var a, b int
	subA := h.Subscribe(EventRideStarted, func(json.RawMessage) { a++ })
	h.Subscribe(EventRideStarted, func(json.RawMessage) { b++ })

	if n := h.Dispatch(EventRideStarted, json.RawMessage(`{}`)); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	subA.Cancel()
	subA.Cancel()
	h.Dispatch(EventRideStarted, json.RawMessage(`{}`))
	if a != 1 || b != 2 {
		t.Fatalf("expected a=1 b=2, got a=%d b=%d", a, b)
	}
	if h.Subscribers(EventRideStarted) != 1 {
		t.Fatalf("expected one subscriber left")
	}
}

func TestHubDispatchUnknownEvent(t *testing.T) {
	if n := NewHub().Dispatch("nothing", nil); n != 0 {
		t.Fatalf("expected no deliveries, got %d", n)
	}
}

func TestOnDecodesPayload(t *testing.T) {
	h := NewHub()
	var got models.RideStatusEvent
	On(h, EventRideStatusChanged, func(e models.RideStatusEvent) { got = e })

	h.Dispatch(EventRideStatusChanged, json.RawMessage(`{"rideId":"r1","status":"in-progress"}`))
	if got.RideID != "r1" || got.Status != "in-progress" {
		t.Fatalf("unexpected event %+v", got)
	}

	got = models.RideStatusEvent{}
	h.Dispatch(EventRideStatusChanged, json.RawMessage(`"garbage"`))
	if got.RideID != "" {
		t.Fatalf("undecodable frame should be dropped")
	}
}
