package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics exposed for a disktest run.
type Metrics struct {
	BytesWrittenTotal  prometheus.Counter
	BytesVerifiedTotal prometheus.Counter
	MismatchesTotal    prometheus.Counter
	ChunksConsumed     *prometheus.CounterVec
	BackpressureLevel  *prometheus.GaugeVec
}

// NewMetrics creates and registers the disktest metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		BytesWrittenTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disktest_bytes_written_total",
			Help: "Total bytes written to the device.",
		}),
		BytesVerifiedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disktest_bytes_verified_total",
			Help: "Total bytes read back and verified.",
		}),
		MismatchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "disktest_mismatches_total",
			Help: "Total verify mismatches detected.",
		}),
		ChunksConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "disktest_chunks_consumed_total",
			Help: "Chunks consumed by the driver, by worker serial.",
		}, []string{"worker"}),
		BackpressureLevel: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disktest_backpressure_level",
			Help: "Current backpressure counter, by worker serial.",
		}, []string{"worker"}),
	}
}

// Handler exposes the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// ChunkConsumed records one chunk consumed from the named worker.
func (m *Metrics) ChunkConsumed(worker string) {
	m.ChunksConsumed.WithLabelValues(worker).Inc()
}

// SetBackpressureLevel records the current backpressure counter for the
// named worker.
func (m *Metrics) SetBackpressureLevel(worker string, level float64) {
	m.BackpressureLevel.WithLabelValues(worker).Set(level)
}
