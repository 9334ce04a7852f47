package scan

import (
	"sync"

	"thumbq/internal/logging"
	"thumbq/internal/mediatypes"
	"thumbq/internal/sniff"
)

// AllowListSource yields the supported MIME types once they are known.
// Wait may be called concurrently and repeatedly.
type AllowListSource interface {
	Wait() (mediatypes.AllowList, error)
}

type staticAllowList struct {
	allow mediatypes.AllowList
}

func (s staticAllowList) Wait() (mediatypes.AllowList, error) {
	return s.allow, nil
}

// StaticAllowList returns an AllowListSource that is already resolved.
func StaticAllowList(types ...string) AllowListSource {
	return staticAllowList{allow: mediatypes.NewAllowList(types)}
}

// Batch is the set of accepted sources, kept as two index-aligned slices.
type Batch struct {
	mu        sync.Mutex
	uris      []string
	mimeTypes []string
}

func (b *Batch) add(uri, mime string) {
	b.mu.Lock()
	b.uris = append(b.uris, uri)
	b.mimeTypes = append(b.mimeTypes, mime)
	b.mu.Unlock()
}

// Lists returns the accepted URIs and their MIME types.
func (b *Batch) Lists() (uris, mimeTypes []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uris, b.mimeTypes
}

// pool classifies requests until the work channel is closed.
type pool struct {
	work    <-chan request
	sniffer sniff.Sniffer
	allow   AllowListSource
	batch   *Batch
	tracker *Tracker
	stats   *stats
	obs     Observer

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func (p *pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// wait blocks until every worker has exited and returns the first setup
// error any of them hit.
func (p *pool) wait() error {
	p.wg.Wait()
	return p.err
}

func (p *pool) fail(err error) {
	p.errOnce.Do(func() { p.err = err })
}

func (p *pool) worker(id int) {
	defer p.wg.Done()

	var session sniff.Session
	var broken bool
	defer func() {
		if session != nil {
			_ = session.Close()
		}
	}()

	for req := range p.work {
		if session == nil && !broken {
			s, err := p.sniffer.Open()
			if err != nil {
				logging.Error("scan: worker %d failed to open sniffer: %v", id, err)
				p.fail(err)
				broken = true
			} else {
				session = s
			}
		}
		if session == nil {
			p.resolve(OutcomeUnclassified, "")
			continue
		}

		mime, err := session.Buffer(req.buf)
		if err != nil {
			logging.Debug("scan: cannot classify %s: %v", req.uri, err)
			p.resolve(OutcomeUnclassified, "")
			continue
		}

		allow, err := p.allow.Wait()
		if err != nil {
			p.fail(err)
			p.resolve(OutcomeUnclassified, mime)
			continue
		}

		if allow.Contains(mime) {
			p.batch.add(req.uri, mime)
			p.resolve(OutcomeAccepted, mime)
		} else {
			logging.Debug("scan: %s has unsupported type %s", req.uri, mime)
			p.resolve(OutcomeDisallowed, mime)
		}
	}
}

func (p *pool) resolve(outcome Outcome, mime string) {
	p.stats.add(outcome)
	if p.obs != nil {
		p.obs.ObservePath(outcome, mime)
	}
	p.tracker.Done()
}
