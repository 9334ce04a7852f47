package scan

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"thumbq/internal/pngmeta"
	"thumbq/internal/sniff"
	"thumbq/internal/uri"
	"thumbq/internal/uring"
)

const testFlavor = "normal"

var sourceMTime = time.Unix(1700000000, 123456789)

// fixture lays out source files and a thumbnail cache in a temp dir.
type fixture struct {
	t     *testing.T
	root  string
	cache string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{t: t, root: root, cache: filepath.Join(root, "cache")}
	if err := os.MkdirAll(f.artifactDir(), 0o755); err != nil {
		t.Fatalf("failed to create cache dir: %v", err)
	}
	return f
}

func (f *fixture) artifactDir() string {
	return filepath.Join(f.cache, "thumbnails", testFlavor)
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(8, 8, color.NRGBA{G: 128, B: 255, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func (f *fixture) write(name string, data []byte) string {
	f.t.Helper()
	path := filepath.Join(f.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.t.Fatalf("failed to write %s: %v", name, err)
	}
	if err := os.Chtimes(path, sourceMTime, sourceMTime); err != nil {
		f.t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
	return path
}

func (f *fixture) png(name string) string {
	return f.write(name, encodePNG(f.t))
}

func (f *fixture) text(name string) string {
	return f.write(name, []byte("plain notes, nothing to see here\n"))
}

func (f *fixture) dir(name string) string {
	f.t.Helper()
	path := filepath.Join(f.root, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		f.t.Fatalf("failed to create dir %s: %v", name, err)
	}
	return path
}

func (f *fixture) artifactPath(src string) string {
	f.t.Helper()
	u, ok := uri.FromPath(src)
	if !ok {
		f.t.Fatalf("no URI for %q", src)
	}
	return uri.ArtifactPath(f.artifactDir(), u)
}

// artifact writes a cached thumbnail for src recording mtime.
func (f *fixture) artifact(src string, mtime string) string {
	f.t.Helper()
	data, err := pngmeta.AppendText(encodePNG(f.t), pngmeta.MTimeKey, mtime)
	if err != nil {
		f.t.Fatalf("failed to annotate artifact: %v", err)
	}
	path := f.artifactPath(src)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.t.Fatalf("failed to write artifact: %v", err)
	}
	return path
}

func (f *fixture) freshArtifact(src string) string {
	return f.artifact(src, fmt.Sprintf("%d.%06d", sourceMTime.Unix(), sourceMTime.Nanosecond()/1000))
}

func (f *fixture) staleArtifact(src string) string {
	return f.artifact(src, fmt.Sprintf("%d.5", sourceMTime.Unix()-1))
}

func (f *fixture) uriOf(src string) string {
	f.t.Helper()
	u, ok := uri.FromPath(src)
	if !ok {
		f.t.Fatalf("no URI for %q", src)
	}
	return u
}

func (f *fixture) scanner(engine Engine, mutate func(*Config)) *Scanner {
	f.t.Helper()
	cfg := Config{
		CacheDir:  f.cache,
		Engine:    engine,
		Workers:   2,
		Supported: func() AllowListSource { return StaticAllowList("image/png", "image/jpeg") },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		f.t.Fatalf("New failed: %v", err)
	}
	return s
}

// forEachEngine runs fn once per I/O engine, skipping io_uring where the
// kernel refuses it.
func forEachEngine(t *testing.T, fn func(t *testing.T, engine Engine)) {
	for _, engine := range []Engine{EngineBlocking, EngineURing} {
		t.Run(string(engine), func(t *testing.T) {
			if engine == EngineURing {
				ring, err := uring.New(1)
				if errors.Is(err, uring.ErrUnavailable) {
					t.Skipf("io_uring unavailable: %v", err)
				}
				if err != nil {
					t.Fatalf("uring.New failed: %v", err)
				}
				ring.Close()
			}
			fn(t, engine)
		})
	}
}

// countingSniffer counts classifications.
type countingSniffer struct {
	inner   sniff.Sniffer
	calls   atomic.Int64
	opens   atomic.Int64
	openErr error
}

func newCountingSniffer() *countingSniffer {
	return &countingSniffer{inner: sniff.New()}
}

func (c *countingSniffer) Open() (sniff.Session, error) {
	c.opens.Add(1)
	if c.openErr != nil {
		return nil, c.openErr
	}
	s, err := c.inner.Open()
	if err != nil {
		return nil, err
	}
	return &countingSession{Session: s, calls: &c.calls}, nil
}

type countingSession struct {
	sniff.Session
	calls *atomic.Int64
}

func (s *countingSession) Buffer(b []byte) (string, error) {
	s.calls.Add(1)
	return s.Session.Buffer(b)
}

// recordingObserver tallies observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	checks   map[ArtifactCheck]int
	scans    int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		outcomes: make(map[Outcome]int),
		checks:   make(map[ArtifactCheck]int),
	}
}

func (r *recordingObserver) ObservePath(o Outcome, _ string) {
	r.mu.Lock()
	r.outcomes[o]++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveArtifact(c ArtifactCheck) {
	r.mu.Lock()
	r.checks[c]++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveScan(Engine, int, int, time.Duration) {
	r.mu.Lock()
	r.scans++
	r.mu.Unlock()
}

func countURIs(uris []string) map[string]int {
	m := make(map[string]int, len(uris))
	for _, u := range uris {
		m[u]++
	}
	return m
}
