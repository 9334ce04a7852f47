package scan

import (
	"golang.org/x/sys/unix"

	"thumbq/internal/uring"
)

// uringQueue submits operations to an io_uring.
type uringQueue struct {
	ring *uring.Ring
}

func newURingQueue(capacity int) (*uringQueue, error) {
	ring, err := uring.New(uint32(capacity))
	if err != nil {
		return nil, err
	}
	return &uringQueue{ring: ring}, nil
}

func (q *uringQueue) statx(tok token, path []byte, stx *unix.Statx_t) error {
	return q.ring.PrepStatx(tok, unix.AT_FDCWD, path, statxFlags, statxMask, stx)
}

func (q *uringQueue) openat(tok token, path []byte, flags int) error {
	return q.ring.PrepOpenat(tok, unix.AT_FDCWD, path, flags, 0)
}

func (q *uringQueue) read(tok token, fd int, buf []byte) error {
	return q.ring.PrepRead(tok, fd, buf, 0)
}

func (q *uringQueue) wait(fn func(tok token, res int32)) (int, error) {
	if n := q.ring.Drain(fn); n > 0 {
		// Completions may have arrived before the last batch was
		// published; push it out without waiting.
		if _, err := q.ring.Submit(); err != nil {
			return n, err
		}
		return n, nil
	}
	if _, err := q.ring.SubmitAndWait(1); err != nil {
		return 0, err
	}
	return q.ring.Drain(fn), nil
}

func (q *uringQueue) cap() int {
	return q.ring.Cap()
}

func (q *uringQueue) Close() error {
	return q.ring.Close()
}
