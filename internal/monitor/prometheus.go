package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tablesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthcheck_tables_analyzed_total", Help: "Total sample tables run through the detectors.",
	})
	tablesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthcheck_tables_failed_total", Help: "Total sample tables rejected before analysis.",
	})
	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthcheck_findings_total", Help: "Total findings by detector.",
	}, []string{"detector"})
	notApplicableTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthcheck_detector_not_applicable_total", Help: "Total detector runs skipped for missing columns.",
	}, []string{"detector"})
	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "healthcheck_analysis_duration_seconds",
		Help:    "Time spent analyzing one sample table.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
)
