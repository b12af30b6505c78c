// Command consumer follows the backend-availability topic and keeps the last
// known state per backend in Redis, where dashboards and other clients can
// read it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-envconfig"

	"github.com/example/ridepool-client/internal/logging"
	"github.com/example/ridepool-client/internal/models"
)

var (
	msgsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_messages_consumed_total",
		Help: "Total availability messages consumed",
	})
	msgsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_messages_invalid_total",
		Help: "Total invalid messages received",
	})
	redisUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_redis_updates_total",
		Help: "Total successful redis updates",
	})
	redisErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_redis_errors_total",
		Help: "Total redis errors",
	})
)

func init() {
	prometheus.MustRegister(msgsConsumed, msgsInvalid, redisUpdates, redisErrors)
}

type consumerConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS, default=localhost:9092"`
	Topic       string   `env:"KAFKA_TOPIC, default=backend-availability"`
	Group       string   `env:"KAFKA_GROUP, default=ridepool-availability"`
	RedisAddr   string   `env:"REDIS_ADDR, default=localhost:6379"`
	KeyPrefix   string   `env:"AVAILABILITY_KEY_PREFIX, default=ridepool:availability:"`
	MetricsAddr string   `env:"METRICS_ADDR, default=:2112"`
	LogLevel    string   `env:"LOG_LEVEL, default=info"`
	LogPretty   bool     `env:"LOG_PRETTY, default=false"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg consumerConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := &redisAdapter{c: rc}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := rc.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis not ready", 503)
				return
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics/health listening")
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: cfg.Brokers, Topic: cfg.Topic, GroupID: cfg.Group, MinBytes: 1, MaxBytes: 1e6})
	defer func() {
		_ = r.Close()
		_ = rc.Close()
	}()

	log.Info().Str("topic", cfg.Topic).Strs("brokers", cfg.Brokers).Str("group", cfg.Group).Msg("consumer listening")

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("shutting down consumer")
				return
			}
			log.Warn().Err(err).Dur("backoff", backoff).Msg("kafka read error")
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		msgsConsumed.Inc()

		var ev models.AvailabilityEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.BackendURL == "" {
			msgsInvalid.Inc()
			log.Warn().Err(err).Bytes("key", m.Key).Msg("invalid message")
			continue
		}

		if err := recordWithRetry(ctx, store, cfg.KeyPrefix, ev, 3, 200*time.Millisecond); err != nil {
			redisErrors.Inc()
			log.Error().Err(err).Str("backend", ev.BackendURL).Msg("redis update failed")
			continue
		}
		redisUpdates.Inc()
		log.Info().Str("backend", ev.BackendURL).Bool("reachable", ev.Reachable).Time("checked_at", ev.CheckedAt).Msg("availability recorded")
	}
}

// StateWriter is the subset of redis the consumer needs.
type StateWriter interface {
	HGet(ctx context.Context, key, field string) (string, error)
	HSet(ctx context.Context, key string, values map[string]any) error
}

type redisAdapter struct{ c *redis.Client }

func (r *redisAdapter) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := r.c.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *redisAdapter) HSet(ctx context.Context, key string, values map[string]any) error {
	_, err := r.c.HSet(ctx, key, values).Result()
	return err
}

// recordWithRetry stores ev unless a newer event for the same backend is
// already recorded, retrying with doubling delay.
func recordWithRetry(ctx context.Context, w StateWriter, prefix string, ev models.AvailabilityEvent, attempts int, delay time.Duration) error {
	key := prefix + ev.BackendURL
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		var prev string
		if prev, err = w.HGet(ctx, key, "checked_at"); err != nil {
			continue
		}
		if prev != "" {
			if at, perr := time.Parse(time.RFC3339Nano, prev); perr == nil && at.After(ev.CheckedAt) {
				return nil
			}
		}
		err = w.HSet(ctx, key, map[string]any{
			"reachable":  ev.Reachable,
			"checked_at": ev.CheckedAt.UTC().Format(time.RFC3339Nano),
		})
		if err == nil {
			return nil
		}
	}
	return err
}
