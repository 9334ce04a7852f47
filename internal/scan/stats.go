package scan

import (
	"sync/atomic"
	"time"
)

// Outcome is the terminal result of one input path.
type Outcome string

const (
	OutcomeRejected     Outcome = "rejected"     // missing, not a regular file, or unreadable
	OutcomeEncoding     Outcome = "encoding"     // path is not valid UTF-8
	OutcomeFresh        Outcome = "fresh"        // cached artifact is up to date
	OutcomeAccepted     Outcome = "accepted"     // classified and allowed
	OutcomeDisallowed   Outcome = "disallowed"   // classified but not in the allow-list
	OutcomeUnclassified Outcome = "unclassified" // sniffer or allow-list failed
)

// AllOutcomes lists every terminal outcome.
var AllOutcomes = []Outcome{
	OutcomeRejected,
	OutcomeEncoding,
	OutcomeFresh,
	OutcomeAccepted,
	OutcomeDisallowed,
	OutcomeUnclassified,
}

// ArtifactCheck is the result of looking up a cached artifact.
type ArtifactCheck string

const (
	ArtifactMissing ArtifactCheck = "missing"
	ArtifactStale   ArtifactCheck = "stale"
	ArtifactFresh   ArtifactCheck = "fresh"
)

// AllArtifactChecks lists every artifact check result.
var AllArtifactChecks = []ArtifactCheck{ArtifactMissing, ArtifactStale, ArtifactFresh}

// Observer receives scan instrumentation. Implementations must be safe for
// concurrent use; ObservePath is called from the driver and the workers.
type Observer interface {
	// ObservePath records a terminal outcome. mime is set for classified
	// paths only.
	ObservePath(outcome Outcome, mime string)
	ObserveArtifact(check ArtifactCheck)
	ObserveScan(engine Engine, paths, workers int, duration time.Duration)
}

// Stats summarizes one scan. The terminal outcome counters add up to the
// number of input paths.
type Stats struct {
	Paths        int
	Rejected     int
	Encoding     int
	Fresh        int
	Accepted     int
	Disallowed   int
	Unclassified int

	MissingArtifacts int
	StaleArtifacts   int

	Duration time.Duration
}

// Resolved returns the sum of the terminal outcome counters.
func (s Stats) Resolved() int {
	return s.Rejected + s.Encoding + s.Fresh + s.Accepted + s.Disallowed + s.Unclassified
}

type stats struct {
	outcomes [6]atomic.Int64
	missing  atomic.Int64
	stale    atomic.Int64
}

func outcomeIndex(o Outcome) int {
	for i, v := range AllOutcomes {
		if v == o {
			return i
		}
	}
	panic("scan: unknown outcome " + string(o))
}

func (s *stats) add(o Outcome) {
	s.outcomes[outcomeIndex(o)].Add(1)
}

func (s *stats) addCheck(c ArtifactCheck) {
	switch c {
	case ArtifactMissing:
		s.missing.Add(1)
	case ArtifactStale:
		s.stale.Add(1)
	}
}

func (s *stats) snapshot(paths int, d time.Duration) Stats {
	return Stats{
		Paths:            paths,
		Rejected:         int(s.outcomes[0].Load()),
		Encoding:         int(s.outcomes[1].Load()),
		Fresh:            int(s.outcomes[2].Load()),
		Accepted:         int(s.outcomes[3].Load()),
		Disallowed:       int(s.outcomes[4].Load()),
		Unclassified:     int(s.outcomes[5].Load()),
		MissingArtifacts: int(s.missing.Load()),
		StaleArtifacts:   int(s.stale.Load()),
		Duration:         d,
	}
}
