package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that overrides the computed
// worker count.
const EnvOverride = "THUMBQ_WORKERS"

// DefaultLimit caps the classification pool when no explicit count is
// configured.
const DefaultLimit = 4

// Count returns the number of workers for a task type described by
// multiplier (workers per available CPU), capped at limit. A limit of 0
// means no cap. THUMBQ_WORKERS overrides the calculation but not the cap.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return capAt(count, limit)
		}
	}

	available := runtime.GOMAXPROCS(0)
	n := int(float64(available) * multiplier)
	if n < 1 {
		n = 1
	}
	return capAt(n, limit)
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// Resolve returns requested when it is positive and otherwise the CPU-bound
// default capped at limit.
func Resolve(requested, limit int) int {
	if requested > 0 {
		return requested
	}
	return ForCPU(limit)
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
