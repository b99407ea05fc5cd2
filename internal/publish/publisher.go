package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Key layout under which cycle outputs are published.
const (
	keyAnalysis         = "scaleguard:analysis:latest"
	keyPredictions      = "scaleguard:predictions:latest"
	keyRemediationStats = "scaleguard:remediation:stats"
)

// Publisher pushes cycle outputs to an external store for dashboards and
// other consumers. Publishing is always best-effort: a failed publish never
// fails the cycle.
type Publisher interface {
	PublishAnalysis(ctx context.Context, analysis *models.RootCauseAnalysis) error
	PublishPredictions(ctx context.Context, report models.PredictionReport) error
	PublishRemediationStats(ctx context.Context, stats models.RemediationStatistics) error
	Close() error
}

// NoopPublisher drops everything. Used when publishing is disabled or the
// store is unreachable at startup.
type NoopPublisher struct{}

func (NoopPublisher) PublishAnalysis(context.Context, *models.RootCauseAnalysis) error { return nil }
func (NoopPublisher) PublishPredictions(context.Context, models.PredictionReport) error {
	return nil
}
func (NoopPublisher) PublishRemediationStats(context.Context, models.RemediationStatistics) error {
	return nil
}
func (NoopPublisher) Close() error { return nil }

// RedisConfig carries the connection settings for the Redis publisher.
type RedisConfig struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	TTL         time.Duration
	DialTimeout time.Duration
}

// RedisPublisher stores the latest cycle outputs as JSON values with a TTL.
type RedisPublisher struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisPublisher connects and pings the store. A failed ping returns an
// error so the caller can fall back to NoopPublisher.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("redis publisher connected", "addr", cfg.Addr, "db", cfg.DB)
	return &RedisPublisher{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func (p *RedisPublisher) PublishAnalysis(ctx context.Context, analysis *models.RootCauseAnalysis) error {
	return p.setJSON(ctx, keyAnalysis, analysis)
}

func (p *RedisPublisher) PublishPredictions(ctx context.Context, report models.PredictionReport) error {
	return p.setJSON(ctx, keyPredictions, report)
}

func (p *RedisPublisher) PublishRemediationStats(ctx context.Context, stats models.RemediationStatistics) error {
	return p.setJSON(ctx, keyRemediationStats, stats)
}

func (p *RedisPublisher) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
