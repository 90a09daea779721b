package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/ordena/backend-go/internal/config"
	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

const (
	profitReportKeyPrefix  = "profit:report"
	profitScanBatchSize    = 100
	reportWindowTimeFormat = time.RFC3339
)

// ProfitCache stores computed profitability reports keyed by business and
// report window. Misses are (zero, false, nil); cache failures other than
// a miss surface as errors so callers can decide to recompute.
type ProfitCache interface {
	GetReport(ctx context.Context, businessID string, window domain.ReportWindow) (domain.ProfitReport, bool, error)
	SetReport(ctx context.Context, report domain.ProfitReport, window domain.ReportWindow) error
	InvalidateBusiness(ctx context.Context, businessID string) error
	InvalidateAll(ctx context.Context) error
}

type redisProfitCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopProfitCache struct{}

func NewProfitCache(cfg config.CacheConfig) (ProfitCache, error) {
	if !cfg.Enabled {
		return &noopProfitCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisProfitCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopProfitCache() ProfitCache {
	return &noopProfitCache{}
}

func (c *redisProfitCache) GetReport(ctx context.Context, businessID string, window domain.ReportWindow) (domain.ProfitReport, bool, error) {
	key := buildProfitReportKey(businessID, window)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return domain.ProfitReport{}, false, nil
	}
	if err != nil {
		return domain.ProfitReport{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.ProfitReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.ProfitReport{}, false, fmt.Errorf("decode profit report cache: %w", err)
	}

	return report, true, nil
}

func (c *redisProfitCache) SetReport(ctx context.Context, report domain.ProfitReport, window domain.ReportWindow) error {
	key := buildProfitReportKey(report.BusinessID, window)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode profit report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisProfitCache) InvalidateBusiness(ctx context.Context, businessID string) error {
	prefix := fmt.Sprintf("%s:%s:", profitReportKeyPrefix, businessID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, profitScanBatchSize)
}

func (c *redisProfitCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, profitReportKeyPrefix, profitScanBatchSize)
}

func (n *noopProfitCache) GetReport(ctx context.Context, businessID string, window domain.ReportWindow) (domain.ProfitReport, bool, error) {
	return domain.ProfitReport{}, false, nil
}

func (n *noopProfitCache) SetReport(ctx context.Context, report domain.ProfitReport, window domain.ReportWindow) error {
	return nil
}

func (n *noopProfitCache) InvalidateBusiness(ctx context.Context, businessID string) error {
	return nil
}

func (n *noopProfitCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildProfitReportKey(businessID string, window domain.ReportWindow) string {
	return fmt.Sprintf("%s:%s:%s", profitReportKeyPrefix, businessID, reportWindowHash(window))
}

func reportWindowHash(window domain.ReportWindow) string {
	parts := []string{"from=", "to="}
	if !window.From.IsZero() {
		parts[0] = "from=" + window.From.UTC().Format(reportWindowTimeFormat)
	}
	if !window.To.IsZero() {
		parts[1] = "to=" + window.To.UTC().Format(reportWindowTimeFormat)
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
