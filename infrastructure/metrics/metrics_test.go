package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.ReceiptCreated("import")
	m.ReceiptCreated("import")
	m.StatusTransition("import", "PROCESSING", "WAITING")
	m.QuickScan()
	m.StockWrites("overwrite", 3)
	m.StockWrites("overwrite", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.receiptsCreated.WithLabelValues("import")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quickScans))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.stockWrites.WithLabelValues("overwrite")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `receipt_status_transitions_total{from="PROCESSING",kind="import",to="WAITING"} 1`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ReceiptCreated("check")
		m.StatusTransition("check", "PENDING", "BALANCED")
		m.QuickScan()
		m.StockWrites("increment", 1)
	})
}
