/*
Package workers sizes the media-type classification pool.

Classification is CPU-bound: a worker inspects at most a kilobyte of each
file and never touches the disk itself, because all reads happen on the
completion-queue driver. One worker per available CPU is therefore the
ceiling, and a small fixed cap keeps short batches from paying for
goroutines that would never receive work.

GOMAXPROCS is used rather than runtime.NumCPU so that container CPU
limits are respected (Go 1.19+ sets GOMAXPROCS from the cgroup quota).

# Overrides

An explicit count wins over everything:

	n := workers.Resolve(cfg.Workers, workers.DefaultLimit)

When the requested count is zero the THUMBQ_WORKERS environment variable
is consulted, and only then the CPU-based calculation.
*/
package workers
