// Package uring is a small io_uring binding covering what the thumbnail scan
// needs: STATX, OPENAT and READ submissions, batched submission through
// io_uring_enter, and draining of the completion ring.
//
// A Ring is not safe for concurrent use. One goroutine owns it, prepares
// submissions, calls Submit or SubmitAndWait, and reaps completions with
// Drain. Memory referenced by a prepared submission (paths, statx buffers,
// read buffers) must stay reachable until its completion has been reaped;
// the Go heap does not move objects, so keeping a reference is sufficient.
//
// Kernels that lack io_uring, or sandboxes that forbid it, make New return
// an error matching ErrUnavailable.
package uring
