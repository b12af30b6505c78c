package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ridepool-client/internal/models"
)

type fakeWriter struct {
	failGet int
	failSet int
	gets    int
	sets    int
	hashes  map[string]map[string]any
}

func newFakeWriter() *fakeWriter { return &fakeWriter{hashes: map[string]map[string]any{}} }

func (f *fakeWriter) HGet(_ context.Context, key, field string) (string, error) {
	f.gets++
	if f.gets <= f.failGet {
		return "", errors.New("hget fail")
	}
	v, _ := f.hashes[key][field].(string)
	return v, nil
}

func (f *fakeWriter) HSet(_ context.Context, key string, values map[string]any) error {
	f.sets++
	if f.sets <= f.failSet {
		return errors.New("hset fail")
	}
	h := f.hashes[key]
	if h == nil {
		h = map[string]any{}
		f.hashes[key] = h
	}
	for k, v := range values {
		h[k] = v
	}
	return nil
}

func TestRecordWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := newFakeWriter()
	f.failGet, f.failSet = 1, 1
	ev := models.AvailabilityEvent{BackendURL: "http://api", Reachable: false, CheckedAt: time.Unix(100, 0)}
	start := time.Now()
	if err := recordWithRetry(context.Background(), f, "p:", ev, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.gets < 2 || f.sets < 2 {
		t.Fatalf("expected retries, got get=%d set=%d", f.gets, f.sets)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
	if f.hashes["p:http://api"]["reachable"] != false {
		t.Fatalf("state not recorded: %v", f.hashes)
	}
}

func TestRecordWithRetry_FailsWhenExhausted(t *testing.T) {
	f := newFakeWriter()
	f.failSet = 5
	ev := models.AvailabilityEvent{BackendURL: "http://api", CheckedAt: time.Unix(100, 0)}
	if err := recordWithRetry(context.Background(), f, "p:", ev, 3, time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
}

func TestRecordWithRetry_KeepsNewerState(t *testing.T) {
	f := newFakeWriter()
	ctx := context.Background()
	newer := models.AvailabilityEvent{BackendURL: "http://api", Reachable: true, CheckedAt: time.Unix(200, 0)}
	older := models.AvailabilityEvent{BackendURL: "http://api", Reachable: false, CheckedAt: time.Unix(100, 0)}

	if err := recordWithRetry(ctx, f, "p:", newer, 1, time.Millisecond); err != nil {
		t.Fatalf("record newer: %v", err)
	}
	if err := recordWithRetry(ctx, f, "p:", older, 1, time.Millisecond); err != nil {
		t.Fatalf("record older: %v", err)
	}
	if f.hashes["p:http://api"]["reachable"] != true {
		t.Fatalf("stale event overwrote newer state: %v", f.hashes)
	}
}
