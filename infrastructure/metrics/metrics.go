package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds receipt counters on a dedicated registry.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	receiptsCreated   *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	quickScans        prometheus.Counter
	stockWrites       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		receiptsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "receipts_created_total",
			Help: "Receipts created, by kind.",
		}, []string{"kind"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "receipt_status_transitions_total",
			Help: "Committed receipt status transitions.",
		}, []string{"kind", "from", "to"}),
		quickScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "receipt_quick_scans_total",
			Help: "Quick-scan barcode events committed.",
		}),
		stockWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "product_stock_writes_total",
			Help: "Product stock mutations, by mode.",
		}, []string{"mode"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.receiptsCreated,
		m.statusTransitions,
		m.quickScans,
		m.stockWrites,
	)
	return m
}

func (m *Metrics) ReceiptCreated(kind string) {
	if m == nil {
		return
	}
	m.receiptsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) StatusTransition(kind, from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(kind, from, to).Inc()
}

func (m *Metrics) QuickScan() {
	if m == nil {
		return
	}
	m.quickScans.Inc()
}

// StockWrites adds n to the stock mutation counter; mode is increment or overwrite.
func (m *Metrics) StockWrites(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.stockWrites.WithLabelValues(mode).Add(float64(n))
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
