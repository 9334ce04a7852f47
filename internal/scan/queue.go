package scan

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Engine selects how the driver performs I/O.
type Engine string

const (
	EngineURing    Engine = "uring"
	EngineBlocking Engine = "blocking"
)

// ErrUnknownEngine is returned for an engine name other than uring or
// blocking.
var ErrUnknownEngine = errors.New("scan: unknown I/O engine")

// ParseEngine parses an engine name.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case EngineURing, EngineBlocking:
		return e, nil
	case "":
		return EngineURing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

const (
	statxMask  = unix.STATX_TYPE | unix.STATX_SIZE | unix.STATX_MTIME
	statxFlags = unix.AT_STATX_SYNC_AS_STAT

	openArtifactFlags = unix.O_RDONLY | unix.O_NONBLOCK | unix.O_NOFOLLOW | unix.O_CLOEXEC
	openSourceFlags   = unix.O_RDONLY | unix.O_NONBLOCK | unix.O_CLOEXEC
)

// ioQueue accepts operations tagged with a token and reports each one's
// result exactly once through wait. Results follow the kernel convention:
// non-negative on success, negated errno on failure. Every buffer handed to
// a queue must stay untouched until its completion has been reported.
type ioQueue interface {
	statx(tok token, path []byte, stx *unix.Statx_t) error
	openat(tok token, path []byte, flags int) error
	read(tok token, fd int, buf []byte) error

	// wait flushes pending operations, blocks until at least one
	// completion is available and reports all available completions.
	wait(fn func(tok token, res int32)) (int, error)

	// cap is the number of operations the queue can hold at once.
	cap() int

	Close() error
}

func newQueue(engine Engine, capacity int) (ioQueue, error) {
	switch engine {
	case EngineURing:
		return newURingQueue(capacity)
	case EngineBlocking:
		return newBlockingQueue(capacity), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// errnoResult converts a system call error into a negated errno.
func errnoResult(err error) int32 {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int32(errno)
	}
	return -int32(unix.EIO)
}
