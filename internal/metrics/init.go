package metrics

import (
	"thumbq/internal/mediatypes"
	"thumbq/internal/scan"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every series appears in the first export, even with a zero value.
func InitializeMetrics() {
	for _, outcome := range scan.AllOutcomes {
		ScanPathsTotal.WithLabelValues(string(outcome))
	}

	for _, ft := range mediatypes.AllFileTypes {
		ScanAcceptedTotal.WithLabelValues(string(ft))
	}

	for _, check := range scan.AllArtifactChecks {
		ArtifactChecksTotal.WithLabelValues(string(check))
	}

	for _, engine := range []scan.Engine{scan.EngineURing, scan.EngineBlocking} {
		ScanDuration.WithLabelValues(string(engine))
	}

	for _, method := range []string{"GetSupported", "GetFlavors", "GetSchedulers", "Queue"} {
		RPCRequestsTotal.WithLabelValues(method, "success")
		RPCRequestsTotal.WithLabelValues(method, "error")
		RPCRequestDuration.WithLabelValues(method)
	}
}
