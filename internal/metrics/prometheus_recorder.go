package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder with Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration    prom.Histogram
	stageDuration    *prom.HistogramVec
	buildOutcome     *prom.CounterVec
	shortLinkResults *prom.CounterVec
	pagesGenerated   prom.Gauge
	documentsLoaded  prom.Gauge
}

// NewPrometheusRecorder constructs and registers the blogsmith metrics on
// reg (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogsmith",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogsmith",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogsmith",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		shortLinkResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogsmith",
			Name:      "shortlink_results_total",
			Help:      "Short-link synchronization results per document",
		}, []string{"result"}),
		pagesGenerated: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogsmith",
			Name:      "pages_generated",
			Help:      "Pages written by the last build",
		}),
		documentsLoaded: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogsmith",
			Name:      "documents_loaded",
			Help:      "Documents loaded by the last build",
		}),
	}

	reg.MustRegister(pr.buildDuration, pr.stageDuration, pr.buildOutcome,
		pr.shortLinkResults, pr.pagesGenerated, pr.documentsLoaded)
	return pr
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncShortLinkResult(result string) {
	pr.shortLinkResults.WithLabelValues(result).Inc()
}

func (pr *PrometheusRecorder) SetPagesGenerated(n int) {
	pr.pagesGenerated.Set(float64(n))
}

func (pr *PrometheusRecorder) SetDocumentsLoaded(n int) {
	pr.documentsLoaded.Set(float64(n))
}
