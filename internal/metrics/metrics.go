package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan metrics
var (
	ScanPathsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbq_scan_paths_total",
			Help: "Total number of scanned paths by terminal outcome",
		},
		[]string{"outcome"},
	)

	ScanAcceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbq_scan_accepted_total",
			Help: "Total number of paths accepted for thumbnailing by media category",
		},
		[]string{"type"},
	)

	ArtifactChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbq_artifact_checks_total",
			Help: "Total number of cached artifact lookups by result",
		},
		[]string{"result"}, // "missing", "stale", "fresh"
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbq_scan_duration_seconds",
			Help:    "Duration of a whole scan from submission to barrier",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"engine"},
	)

	ScanBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thumbq_scan_batch_size",
			Help:    "Number of paths submitted per scan",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	ScanLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thumbq_scan_last_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ClassificationWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thumbq_classification_workers",
			Help: "Number of classification workers used by the last scan",
		},
	)
)

// Thumbnailer RPC metrics
var (
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbq_rpc_requests_total",
			Help: "Total number of thumbnailer RPC calls",
		},
		[]string{"method", "status"},
	)

	RPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbq_rpc_request_duration_seconds",
			Help:    "Thumbnailer RPC call duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method"},
	)

	QueuedURIsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbq_queued_uris_total",
			Help: "Total number of URIs submitted for thumbnail generation",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "thumbq_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for collection by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
