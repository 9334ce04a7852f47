package scan

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"thumbq/internal/logging"
	"thumbq/internal/sniff"
	"thumbq/internal/workers"
)

// DefaultMaxInFlight caps the arena and the ring size. The effective
// limit is further lowered to fit the queue and RLIMIT_NOFILE.
const DefaultMaxInFlight = 4096

var (
	// ErrNoCacheDir is returned when the scanner has no cache directory.
	ErrNoCacheDir = errors.New("scan: no cache directory configured")
	// ErrNoAllowList is returned when the scanner has no allow-list source.
	ErrNoAllowList = errors.New("scan: no allow-list source configured")
	// ErrNoFlavor is returned when Scan is called with an empty flavor.
	ErrNoFlavor = errors.New("scan: empty thumbnail flavor")
)

// Config configures a Scanner. The scanner never reads the environment;
// everything it needs comes through this struct.
type Config struct {
	// CacheDir is the base cache directory. Artifacts are looked up in
	// <CacheDir>/thumbnails/<flavor>.
	CacheDir string

	// Engine selects the I/O engine (default uring).
	Engine Engine

	// Workers is the classification pool size (0 = auto based on CPU).
	Workers int

	// MaxInFlight caps the number of paths with an outstanding operation
	// (0 = DefaultMaxInFlight).
	MaxInFlight int

	// Unchecked skips the cached artifact lookup.
	Unchecked bool

	// Supported starts fetching the allow-list. It is called once per
	// Scan, before any I/O is submitted.
	Supported func() AllowListSource

	// Sniffer classifies source bytes (default sniff.New()).
	Sniffer sniff.Sniffer

	// Observer receives instrumentation (optional).
	Observer Observer
}

// Result is the outcome of one scan.
type Result struct {
	// URIs and MimeTypes are index-aligned. Their order is the order in
	// which workers accepted the sources, not input order.
	URIs      []string
	MimeTypes []string
	Stats     Stats
}

// Scanner runs scans with a fixed configuration.
type Scanner struct {
	config Config
}

// New validates config and returns a Scanner.
func New(config Config) (*Scanner, error) {
	if config.CacheDir == "" {
		return nil, ErrNoCacheDir
	}
	if config.Supported == nil {
		return nil, ErrNoAllowList
	}
	engine, err := ParseEngine(string(config.Engine))
	if err != nil {
		return nil, err
	}
	config.Engine = engine
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = DefaultMaxInFlight
	}
	if config.Sniffer == nil {
		config.Sniffer = sniff.New()
	}
	return &Scanner{config: config}, nil
}

// ArtifactDir returns the directory holding artifacts of flavor.
func (s *Scanner) ArtifactDir(flavor string) string {
	return filepath.Join(s.config.CacheDir, "thumbnails", flavor)
}

// Scan checks every path and returns the sources that need a thumbnail of
// the given flavor together with their MIME types. It blocks until every
// path has been resolved. Per-path failures are only counted in the
// returned stats; errors are reserved for failures of the scan itself.
func (s *Scanner) Scan(paths []string, flavor string) (*Result, error) {
	if flavor == "" {
		return nil, ErrNoFlavor
	}
	start := time.Now()
	result := &Result{}
	if len(paths) == 0 {
		return result, nil
	}

	allow := s.config.Supported()

	capacity := min(len(paths), inFlightLimit(s.config.MaxInFlight, descriptorBudget()))
	q, err := newQueue(s.config.Engine, capacity)
	if err != nil {
		return nil, fmt.Errorf("scan: initializing %s engine: %w", s.config.Engine, err)
	}
	// The ring may hold fewer entries than requested.
	capacity = min(capacity, q.cap())

	numWorkers := min(workers.Resolve(s.config.Workers, workers.DefaultLimit), len(paths))
	logging.Debug("scan: %d paths, engine=%s capacity=%d workers=%d unchecked=%v",
		len(paths), s.config.Engine, capacity, numWorkers, s.config.Unchecked)

	tracker := NewTracker(len(paths))
	st := &stats{}
	batch := &Batch{}
	work := make(chan request, capacity)

	p := &pool{
		work:    work,
		sniffer: s.config.Sniffer,
		allow:   allow,
		batch:   batch,
		tracker: tracker,
		stats:   st,
		obs:     s.config.Observer,
	}
	p.start(numWorkers)

	d := &driver{
		q:           q,
		arena:       newArena(capacity),
		artifactDir: s.ArtifactDir(flavor),
		unchecked:   s.config.Unchecked,
		work:        work,
		tracker:     tracker,
		stats:       st,
		obs:         s.config.Observer,
	}
	driverErr := d.run(paths)

	close(work)
	poolErr := p.wait()

	if err := q.Close(); err != nil {
		logging.Warn("scan: closing %s engine: %v", s.config.Engine, err)
	}
	runtime.KeepAlive(d)

	select {
	case <-tracker.Zero():
	default:
		panic(fmt.Sprintf("scan: %d paths unresolved at barrier", tracker.Remaining()))
	}

	duration := time.Since(start)
	result.URIs, result.MimeTypes = batch.Lists()
	result.Stats = st.snapshot(len(paths), duration)
	if s.config.Observer != nil {
		s.config.Observer.ObserveScan(s.config.Engine, len(paths), numWorkers, duration)
	}

	logging.Info("Scan complete: %d paths, %d accepted, %d fresh, %d rejected in %v",
		len(paths), result.Stats.Accepted, result.Stats.Fresh, result.Stats.Rejected, duration)

	if driverErr != nil {
		return result, driverErr
	}
	if poolErr != nil {
		return result, fmt.Errorf("scan: classification: %w", poolErr)
	}
	return result, nil
}
