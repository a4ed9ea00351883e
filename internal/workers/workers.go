package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv is the environment variable that pins the worker count.
const OverrideEnv = "EXTRACT_WORKERS"

// DefaultExtractionLimit caps the extraction pool when no limit is configured.
const DefaultExtractionLimit = 16

// Count returns the number of workers for a task. multiplier scales
// GOMAXPROCS (1.0 CPU-bound, 2.0 I/O-bound); limit caps the result, 0 means
// no cap. The result is never below 1.
func Count(multiplier float64, limit int) int {
	if override, ok := envOverride(); ok {
		return capAt(override, limit)
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForExtraction returns the pool size for preview extraction.
func ForExtraction() int {
	return ForIO(DefaultExtractionLimit)
}

func envOverride() (int, bool) {
	raw := os.Getenv(OverrideEnv)
	if raw == "" {
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
