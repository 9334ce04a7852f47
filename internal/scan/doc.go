// Package scan decides which files in a batch lack an up-to-date cached
// thumbnail and classifies the ones that do.
//
// # Pipeline
//
// Every input path moves through a forward-only sequence of stages, each
// driven by exactly one I/O completion:
//
//	StatSource -> OpenArtifact -> ReadArtifact -> OpenSource -> ReadSource
//
// StatSource rejects anything that is not a regular file. OpenArtifact and
// ReadArtifact look for the cached thumbnail and compare its recorded
// Thumb::MTime with the source; a fresh artifact ends the task early.
// OpenSource and ReadSource read the first kilobyte of the source, which is
// then handed to the classification worker pool. In unchecked mode the two
// artifact stages are skipped.
//
// # Engines
//
// The driver talks to an I/O queue. [EngineURing] submits operations to a
// kernel io_uring and reaps their completions in batches. [EngineBlocking]
// performs the same operations with ordinary system calls and feeds the
// results back through the same completion path, for kernels where io_uring
// is unavailable or disabled.
//
// # Ownership
//
// In-flight tasks live in a fixed-size slot arena. The completion token
// attached to each operation is a slot index tagged with a generation, so a
// stale token can never resolve to a recycled slot. A task is taken out of
// the arena when its completion arrives and re-inserted with a new token if
// another operation follows. Paths beyond the arena's capacity wait in a
// backlog and are admitted as slots free up.
//
// # Termination
//
// Every path is resolved exactly once against a [Tracker]: by the driver
// (rejected, encoding, fresh) or by the worker that classified it. [Scanner.Scan]
// returns only after the driver has no work left, every worker has exited
// and the tracker has reached zero.
package scan
