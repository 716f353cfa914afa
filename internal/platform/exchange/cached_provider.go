package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/platform/metrics"
)

const cacheKeyPrefix = "exchange_rates:"

// CachedRateProvider keeps rate tables in Redis, fronted by an optional
// in-process TinyLFU tier. Concurrent misses for one base share a single
// upstream call.
type CachedRateProvider struct {
	next    RateProvider
	cache   *cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCachedRateProvider(
	logger *slog.Logger,
	next RateProvider,
	client *redis.Client,
	cfg *config.ExchangeRateConfig,
	m *metrics.Metrics,
) *CachedRateProvider {
	opts := &cache.Options{Redis: client}
	if cfg.LocalCacheSize > 0 {
		opts.LocalCache = cache.NewTinyLFU(cfg.LocalCacheSize, cfg.LocalCacheTTL)
	}
	return &CachedRateProvider{
		next:    next,
		cache:   cache.New(opts),
		ttl:     cfg.CacheTTL,
		metrics: m,
		logger:  logger,
	}
}

func (p *CachedRateProvider) Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	var (
		raw     map[string]string
		fetched bool
	)
	err := p.cache.Once(&cache.Item{
		Ctx:   ctx,
		Key:   cacheKeyPrefix + base,
		Value: &raw,
		TTL:   p.ttl,
		Do: func(*cache.Item) (interface{}, error) {
			fetched = true
			rates, err := p.next.Rates(ctx, base)
			if err != nil {
				return nil, err
			}
			return encodeRates(rates), nil
		},
	})

	source := "cache"
	if fetched {
		source = "upstream"
	}
	if err != nil {
		p.metrics.RateLookup(source, "error")
		return nil, err
	}
	p.metrics.RateLookup(source, "ok")

	rates, err := decodeRates(raw)
	if err != nil {
		p.logger.Warn("discarding corrupt cached rate table", "base", base, "error", err)
		_ = p.cache.Delete(ctx, cacheKeyPrefix+base)
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	return rates, nil
}

// Invalidate drops the cached table for base.
func (p *CachedRateProvider) Invalidate(ctx context.Context, base string) error {
	err := p.cache.Delete(ctx, cacheKeyPrefix+base)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Rates are cached as strings so no precision is lost in msgpack floats.
func encodeRates(rates map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(rates))
	for code, r := range rates {
		out[code] = r.String()
	}
	return out
}

func decodeRates(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for code, s := range raw {
		r, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("rate %s: %w", code, err)
		}
		out[code] = r
	}
	return out, nil
}
