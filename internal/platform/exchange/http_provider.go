package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/config"
)

const resultSuccess = "success"

type latestRatesResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	BaseCode        string                     `json:"base_code"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// HTTPRateProvider reads rate tables from an exchangerate-api.com compatible
// endpoint: GET {base}/{key}/latest/{currency}.
type HTTPRateProvider struct {
	client        *http.Client
	baseURL       string
	apiKey        string
	maxRetries    int
	retryInterval time.Duration
	logger        *slog.Logger
}

func NewHTTPRateProvider(logger *slog.Logger, cfg *config.ExchangeRateConfig) *HTTPRateProvider {
	return &HTTPRateProvider{
		client:        &http.Client{Timeout: cfg.Timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		maxRetries:    cfg.MaxRetries,
		retryInterval: 200 * time.Millisecond,
		logger:        logger,
	}
}

// Rates fetches the table for base. Network errors, 429 and 5xx responses are
// retried with exponential backoff; anything else fails at once.
func (p *HTTPRateProvider) Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrRateUnavailable)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.maxRetries)), ctx)

	rates, err := backoff.RetryNotifyWithData(func() (map[string]decimal.Decimal, error) {
		return p.fetch(ctx, base)
	}, policy, func(err error, wait time.Duration) {
		p.logger.Warn("exchange rate request failed, retrying", "base", base, "wait", wait, "error", err)
	})
	if err != nil {
		p.logger.Error("failed to fetch exchange rates", "base", base, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	return rates, nil
}

func (p *HTTPRateProvider) fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, url.PathEscape(p.apiKey), url.PathEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("rate provider returned %d", resp.StatusCode)
	}

	var body latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode rate response (status %d): %w", resp.StatusCode, err))
	}
	if resp.StatusCode != http.StatusOK || body.Result != resultSuccess {
		return nil, backoff.Permanent(fmt.Errorf("rate provider result %q (%s), status %d", body.Result, body.ErrorType, resp.StatusCode))
	}
	return body.ConversionRates, nil
}
