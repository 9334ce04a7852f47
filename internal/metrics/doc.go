// Package metrics provides Prometheus instrumentation for thumbq.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "thumbq_". thumbq is a short-lived command, so instead of
// serving an HTTP endpoint the registry is exported with [WriteTextfile] at
// the end of a run, in the format read by node_exporter's textfile collector.
//
// # Metric Categories
//
// ## Scan Metrics
//
//   - ScanPathsTotal: Counter of scanned paths by terminal outcome
//   - ScanAcceptedTotal: Counter of accepted paths by media category
//   - ArtifactChecksTotal: Counter of cache lookups (missing/stale/fresh)
//   - ScanDuration: Histogram of scan duration by I/O engine
//   - ScanBatchSize: Histogram of paths per scan
//   - ScanLastTimestamp: Gauge of last scan completion time
//   - ClassificationWorkers: Gauge of worker count in the last scan
//
// ## Thumbnailer Metrics
//
//   - RPCRequestsTotal: Counter of thumbnailer calls by method and status
//   - RPCRequestDuration: Histogram of call duration by method
//   - QueuedURIsTotal: Counter of URIs handed to the thumbnailer
//
// # Observers
//
// The scan and thumbnailer packages do not import this package. They accept
// small observer interfaces instead, implemented here by [NewScanObserver]
// and [NewRPCObserver]:
//
//	s, err := scan.New(scan.Config{Observer: metrics.NewScanObserver()})
//
// # Prometheus Queries
//
// Fraction of scanned paths that needed a thumbnail:
//
//	thumbq_scan_paths_total{outcome="accepted"} / ignoring(outcome) sum(thumbq_scan_paths_total)
//
// Stale artifact ratio:
//
//	thumbq_artifact_checks_total{result="stale"} /
//	ignoring(result) sum(thumbq_artifact_checks_total)
package metrics
