package scan

import (
	"fmt"

	"golang.org/x/sys/unix"

	"thumbq/internal/logging"
	"thumbq/internal/pngmeta"
	"thumbq/internal/uri"
)

// SourcePrefixSize is the number of leading source bytes read for
// classification.
const SourcePrefixSize = 1024

// request is a source whose leading bytes have been read and which now
// belongs to the classification pool.
type request struct {
	uri string
	buf []byte
}

// driver owns the I/O queue and the arena and advances every task through
// its stages. All of its methods run on one goroutine.
type driver struct {
	q           ioQueue
	arena       *arena
	artifactDir string
	unchecked   bool

	work    chan<- request
	tracker *Tracker
	stats   *stats
	obs     Observer

	backlog []string
	next    int

	// orphans keeps the buffers of aborted tasks reachable until the
	// queue has been closed, since the kernel may still write to them.
	orphans []*task
}

// run admits every path and processes completions until no operation is
// outstanding. On a queue failure the tasks still owned by the driver are
// resolved as rejected before the error is returned.
func (d *driver) run(paths []string) error {
	d.backlog = paths
	d.next = 0

	d.admit()
	for d.arena.len() > 0 {
		if _, err := d.q.wait(d.complete); err != nil {
			d.abort()
			return fmt.Errorf("scan: waiting for completions: %w", err)
		}
		d.admit()
	}
	return nil
}

// admit moves backlog paths into free arena slots.
func (d *driver) admit() {
	for d.next < len(d.backlog) && d.arena.len() < d.arena.cap() {
		name := d.backlog[d.next]
		d.next++
		t := newTask(name)
		d.submit(t, t.stage)
	}
}

// abort resolves everything the driver still owns.
func (d *driver) abort() {
	d.arena.drain(func(t *task) {
		d.orphans = append(d.orphans, t)
		d.closeStage(t.stage)
		d.resolve(t, OutcomeRejected)
	})
	for ; d.next < len(d.backlog); d.next++ {
		d.stats.add(OutcomeRejected)
		if d.obs != nil {
			d.obs.ObservePath(OutcomeRejected, "")
		}
		d.tracker.Done()
	}
}

// submit installs st as the task's pending operation and queues it.
func (d *driver) submit(t *task, st stage) {
	t.stage = st
	tok, ok := d.arena.insert(t)
	if !ok {
		// Admission never exceeds the arena capacity and each completion
		// frees the slot it reuses, so this is unreachable.
		panic("scan: arena full")
	}

	var err error
	switch s := st.(type) {
	case *statSource:
		err = d.q.statx(tok, t.cpath, &s.stx)
	case *openArtifact:
		err = d.q.openat(tok, s.path, openArtifactFlags)
	case *readArtifact:
		err = d.q.read(tok, s.fd, s.buf)
	case *openSource:
		err = d.q.openat(tok, t.cpath, openSourceFlags)
	case *readSource:
		err = d.q.read(tok, s.fd, s.buf)
	}
	if err != nil {
		logging.Warn("scan: failed to queue %s for %q: %v", st.Stage(), t.name, err)
		d.arena.take(tok)
		d.closeStage(st)
		d.resolve(t, OutcomeRejected)
	}
}

// complete applies the result of one operation to its task.
func (d *driver) complete(tok token, res int32) {
	t, ok := d.arena.take(tok)
	if !ok {
		logging.Warn("scan: completion for unknown token %#x", tok)
		return
	}

	switch st := t.stage.(type) {
	case *statSource:
		if res < 0 || !isRegular(st.stx.Mode) {
			logging.Debug("scan: %q rejected at stat (res=%d)", t.name, res)
			d.resolve(t, OutcomeRejected)
			return
		}
		u, ok := uri.FromPath(t.name)
		if !ok {
			logging.Warn("A non-valid UTF-8 path was provided, this is not supported: %q", t.name)
			d.resolve(t, OutcomeEncoding)
			return
		}
		src := source{uri: u, mtime: st.stx.Mtime.Sec}
		if d.unchecked {
			d.submit(t, &openSource{src: src})
			return
		}
		d.submit(t, &openArtifact{src: src, path: cstring(uri.ArtifactPath(d.artifactDir, u))})

	case *openArtifact:
		if res < 0 {
			d.check(ArtifactMissing)
			d.submit(t, &openSource{src: st.src})
			return
		}
		d.submit(t, &readArtifact{src: st.src, fd: int(res), buf: make([]byte, pngmeta.PrefixSize)})

	case *readArtifact:
		closeFD(st.fd)
		if res > 0 && pngmeta.IsFresh(st.buf[:res], st.src.mtime) {
			d.check(ArtifactFresh)
			d.resolve(t, OutcomeFresh)
			return
		}
		d.check(ArtifactStale)
		d.submit(t, &openSource{src: st.src})

	case *openSource:
		if res < 0 {
			logging.Debug("scan: %q rejected at open (res=%d)", t.name, res)
			d.resolve(t, OutcomeRejected)
			return
		}
		d.submit(t, &readSource{src: st.src, fd: int(res), buf: make([]byte, SourcePrefixSize)})

	case *readSource:
		closeFD(st.fd)
		if res <= 0 {
			logging.Debug("scan: %q rejected at read (res=%d)", t.name, res)
			d.resolve(t, OutcomeRejected)
			return
		}
		d.work <- request{uri: st.src.uri, buf: st.buf[:res]}
	}
}

func (d *driver) resolve(t *task, outcome Outcome) {
	d.stats.add(outcome)
	if d.obs != nil {
		d.obs.ObservePath(outcome, "")
	}
	d.tracker.Done()
}

func (d *driver) check(c ArtifactCheck) {
	d.stats.addCheck(c)
	if d.obs != nil {
		d.obs.ObserveArtifact(c)
	}
}

// closeStage releases the descriptor held by a stage, if any.
func (d *driver) closeStage(st stage) {
	switch s := st.(type) {
	case *readArtifact:
		closeFD(s.fd)
	case *readSource:
		closeFD(s.fd)
	}
}

func closeFD(fd int) {
	if err := unix.Close(fd); err != nil {
		logging.Debug("scan: close fd %d: %v", fd, err)
	}
}
