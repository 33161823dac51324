package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors. A nil *Metrics records nothing.
type Metrics struct {
	scans      *prometheus.CounterVec
	reconciled prometheus.Counter
	qrStreams  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presensi_scan_total",
			Help: "attendance scans by outcome",
		}, []string{"outcome"}),
		reconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "presensi_reconciled_total",
			Help: "missed attendance rows written after meetings ended",
		}),
		qrStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "presensi_qr_streams",
			Help: "open rotating qr streams",
		}),
	}
}

// NewRegistry returns a registry with the Go and process collectors added.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Scan(outcome string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reconciled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reconciled.Add(float64(n))
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.qrStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.qrStreams.Dec()
}
