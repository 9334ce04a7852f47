package metrics

import (
	"time"

	"thumbq/internal/mediatypes"
	"thumbq/internal/scan"
	"thumbq/internal/thumbnailer"
)

// scanObserver implements scan.Observer using the Prometheus metrics
// declared in this package.
type scanObserver struct{}

// NewScanObserver creates an observer that records scan metrics into the
// counters and histograms declared in metrics.go.
func NewScanObserver() scan.Observer {
	return &scanObserver{}
}

func (o *scanObserver) ObservePath(outcome scan.Outcome, mime string) {
	ScanPathsTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == scan.OutcomeAccepted {
		ScanAcceptedTotal.WithLabelValues(string(mediatypes.GetFileType(mime))).Inc()
	}
}

func (o *scanObserver) ObserveArtifact(check scan.ArtifactCheck) {
	ArtifactChecksTotal.WithLabelValues(string(check)).Inc()
}

func (o *scanObserver) ObserveScan(engine scan.Engine, paths, workers int, duration time.Duration) {
	ScanDuration.WithLabelValues(string(engine)).Observe(duration.Seconds())
	ScanBatchSize.Observe(float64(paths))
	ClassificationWorkers.Set(float64(workers))
	ScanLastTimestamp.SetToCurrentTime()
}

// rpcObserver implements thumbnailer.Observer.
type rpcObserver struct{}

// NewRPCObserver creates an observer that records thumbnailer call metrics.
func NewRPCObserver() thumbnailer.Observer {
	return &rpcObserver{}
}

func (o *rpcObserver) ObserveCall(method string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RPCRequestsTotal.WithLabelValues(method, status).Inc()
	RPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (o *rpcObserver) ObserveQueued(n int) {
	QueuedURIsTotal.Add(float64(n))
}
