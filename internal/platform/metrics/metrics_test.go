package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.TransactionProcessed("debit", "success")
	m.TransactionProcessed("debit", "success")
	m.TransactionProcessed("debit", "failed")
	m.TransactionRejected("CONVERSION_FAILED")
	m.CommitConflict()
	m.RateLookup("upstream", "ok")
	m.OutboxMessage("archived")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("debit", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("debit", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("CONVERSION_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLookups.WithLabelValues("upstream", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboxArchived.WithLabelValues("archived")))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.CommitConflict()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.commitConflicts))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.commitConflicts))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TransactionProcessed("credit", "success")
		m.TransactionRejected("INVALID_REQUEST")
		m.CommitConflict()
		m.RateLookup("cache", "ok")
		m.OutboxMessage("failed")
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST", "/api/v1/transactions", 201, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `wallet_ledger_http_requests_total{code="201",method="POST",route="/api/v1/transactions"} 1`)
	assert.Contains(t, string(body), "wallet_ledger_http_request_duration_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
