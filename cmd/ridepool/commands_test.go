package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/example/ridepool-client/internal/api"
	"github.com/example/ridepool-client/internal/models"
)

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 33.6844, 73.0479 ")
	if err != nil || p.Lat != 33.6844 || p.Lng != 73.0479 {
		t.Fatalf("unexpected %+v (%v)", p, err)
	}
	for _, bad := range []string{"", "1", "a,b", "91,0", "0,181", "1,2,3", "NaN,0", "0,NaN", "Inf,0", "0,-Inf"} {
		if _, err := parsePoint(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFareCommand(t *testing.T) {
	cmd := fareCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--from", "33.6844,73.0479", "--to", "33.7294,73.0931", "--pool"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fare: %v", err)
	}
	var got models.FareInfo
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.TotalFare != 246 || got.Discount != 82 {
		t.Fatalf("unexpected fare %+v", got)
	}
}

func TestWhoamiWithoutSession(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memory")
	cmd := whoamiCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected not signed in error")
	}
}

func TestRidesCommandServesDemoDataOffline(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("RIDEPOOL_API_URL", "http://127.0.0.1:1")
	t.Setenv("HEALTH_PROBE_TIMEOUT", "200ms")
	t.Setenv("REQUEST_TIMEOUT", "500ms")
	t.Setenv("LOG_LEVEL", "error")

	cmd := ridesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--status", "completed", "--limit", "1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("rides: %v", err)
	}
	var got api.BookingList
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if len(got.Rides) != 1 || got.Rides[0].Status != "completed" {
		t.Fatalf("unexpected rides %+v", got.Rides)
	}
	if got.Pagination.Total != 2 || got.Pagination.Limit != 1 {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}
}
