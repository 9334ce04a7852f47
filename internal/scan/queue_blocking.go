package scan

import (
	"errors"

	"golang.org/x/sys/unix"
)

var errStalled = errors.New("scan: wait with no queued operations")

type completion struct {
	tok token
	res int32
}

// blockingQueue runs every operation synchronously when it is queued and
// reports the results on the next wait.
type blockingQueue struct {
	ready    []completion
	spare    []completion
	capacity int
}

func newBlockingQueue(capacity int) *blockingQueue {
	return &blockingQueue{
		ready:    make([]completion, 0, capacity),
		spare:    make([]completion, 0, capacity),
		capacity: capacity,
	}
}

func (q *blockingQueue) push(tok token, res int32) {
	q.ready = append(q.ready, completion{tok: tok, res: res})
}

func (q *blockingQueue) statx(tok token, path []byte, stx *unix.Statx_t) error {
	err := unix.Statx(unix.AT_FDCWD, string(path[:len(path)-1]), statxFlags, statxMask, stx)
	if err != nil {
		q.push(tok, errnoResult(err))
		return nil
	}
	q.push(tok, 0)
	return nil
}

func (q *blockingQueue) openat(tok token, path []byte, flags int) error {
	fd, err := unix.Openat(unix.AT_FDCWD, string(path[:len(path)-1]), flags, 0)
	if err != nil {
		q.push(tok, errnoResult(err))
		return nil
	}
	q.push(tok, int32(fd))
	return nil
}

func (q *blockingQueue) read(tok token, fd int, buf []byte) error {
	n, err := unix.Pread(fd, buf, 0)
	if err != nil {
		q.push(tok, errnoResult(err))
		return nil
	}
	q.push(tok, int32(n))
	return nil
}

func (q *blockingQueue) wait(fn func(tok token, res int32)) (int, error) {
	batch := q.ready
	if len(batch) == 0 {
		return 0, errStalled
	}
	q.ready = q.spare[:0]
	for _, c := range batch {
		fn(c.tok, c.res)
	}
	q.spare = batch[:0]
	return len(batch), nil
}

func (q *blockingQueue) cap() int {
	return q.capacity
}

func (q *blockingQueue) Close() error {
	return nil
}
