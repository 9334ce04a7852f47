package scan

import (
	"golang.org/x/sys/unix"

	"thumbq/internal/logging"
)

// descriptorBudget returns how many tasks may run at once without
// exhausting RLIMIT_NOFILE. Each task holds at most one descriptor, and
// half of the soft limit is left to the rest of the process. It returns 0
// when the limit is unknown or unlimited.
func descriptorBudget() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		logging.Debug("scan: reading RLIMIT_NOFILE: %v", err)
		return 0
	}
	return budgetFromLimit(rlim.Cur)
}

func budgetFromLimit(soft uint64) int {
	// RLIM_INFINITY is all ones and lands here too.
	if soft/2 >= maxBudget {
		return 0
	}
	return max(int(soft/2), 1)
}

// maxBudget bounds budgetFromLimit so that the result fits in an int on
// every platform.
const maxBudget = 1 << 30

// inFlightLimit combines the configured cap with the descriptor budget.
func inFlightLimit(configured, budget int) int {
	if budget > 0 && budget < configured {
		return budget
	}
	return configured
}
