package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config captures every tunable of the client core and the local proxy.
// Defaults let the binary run against a backend on localhost:8888 with no setup.
type Config struct {
	APIURL    string `env:"RIDEPOOL_API_URL, default=http://localhost:8888"`
	SocketURL string `env:"RIDEPOOL_SOCKET_URL"`

	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL, default=10s"`
	HealthProbeTimeout  time.Duration `env:"HEALTH_PROBE_TIMEOUT, default=3s"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT, default=10s"`

	Session SessionConfig
	Kafka   KafkaConfig
	HTTP    HTTPConfig

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
}

type SessionConfig struct {
	Backend  string `env:"SESSION_BACKEND, default=file"`
	File     string `env:"SESSION_FILE, default=.ridepool/session.json"`
	RedisKey string `env:"SESSION_REDIS_PREFIX, default=ridepool:session:"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB, default=0"`

	PGDSN string `env:"PG_DSN"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=backend-availability"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR, default=:8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT, default=5s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT, default=15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT, default=120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=15s"`
}

// Load reads Config from the process environment.
func Load(ctx context.Context) (Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads Config through l and validates the result. All problems are
// reported together.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	if cfg.SocketURL == "" {
		cfg.SocketURL = cfg.APIURL
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("RIDEPOOL_API_URL must be an absolute URL, got %q", c.APIURL))
	}
	if c.HealthCheckInterval <= 0 {
		errs = append(errs, errors.New("HEALTH_CHECK_INTERVAL must be > 0"))
	}
	if c.HealthProbeTimeout <= 0 {
		errs = append(errs, errors.New("HEALTH_PROBE_TIMEOUT must be > 0"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be > 0"))
	}

	switch c.Session.Backend {
	case "memory":
	case "file":
		if c.Session.File == "" {
			errs = append(errs, errors.New("SESSION_FILE is required for the file session backend"))
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis session backend"))
		}
	case "postgres":
		if c.Session.PGDSN == "" {
			errs = append(errs, errors.New("PG_DSN is required for the postgres session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND %q is not one of memory, file, redis, postgres", c.Session.Backend))
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}

	return errors.Join(errs...)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
