package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8888" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.SocketURL != cfg.APIURL {
		t.Fatalf("expected socket url to default to api url, got %q", cfg.SocketURL)
	}
	if cfg.HealthCheckInterval != 10*time.Second || cfg.HealthProbeTimeout != 3*time.Second {
		t.Fatalf("unexpected health timings %v / %v", cfg.HealthCheckInterval, cfg.HealthProbeTimeout)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.Session.Backend != "file" {
		t.Fatalf("unexpected session backend %q", cfg.Session.Backend)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTP.Addr)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"RIDEPOOL_API_URL":      "https://api.ridepool.pk/",
		"HEALTH_CHECK_INTERVAL": "30s",
		"SESSION_BACKEND":       "Redis",
		"REDIS_ADDR":            "localhost:6379",
		"KAFKA_BROKERS":         "k1:9092, ,k2:9092",
		"LOG_LEVEL":             "DEBUG",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://api.ridepool.pk" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.HealthCheckInterval != 30*time.Second {
		t.Fatalf("unexpected interval %v", cfg.HealthCheckInterval)
	}
	if cfg.Session.Backend != "redis" {
		t.Fatalf("unexpected backend %q", cfg.Session.Backend)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadCollectsAllErrors(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"RIDEPOOL_API_URL":      "not a url",
		"HEALTH_CHECK_INTERVAL": "0s",
		"SESSION_BACKEND":       "postgres",
	}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"RIDEPOOL_API_URL", "HEALTH_CHECK_INTERVAL", "PG_DSN"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_BACKEND": "etcd",
	}))
	if err == nil || !strings.Contains(err.Error(), "SESSION_BACKEND") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestLoadBadDuration(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"REQUEST_TIMEOUT": "soon",
	}))
	if err == nil {
		t.Fatalf("expected parse error")
	}
}
