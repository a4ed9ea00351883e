package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"book-catalog/internal/logging"
)

const (
	// DefaultMemoryRatio is the share of the container limit given to the Go
	// heap. The remainder covers goroutine stacks and decompression buffers.
	DefaultMemoryRatio = 0.85

	// CgroupMemoryMax is the cgroup v2 memory limit file.
	CgroupMemoryMax = "/sys/fs/cgroup/memory.max"
)

// Sources reported in Result.Source.
const (
	SourceGoMemLimit  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
	SourceCgroup      = "cgroup"
	SourceNone        = "none"
)

// Result holds the outcome of memory limit configuration.
type Result struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets the Go soft memory limit from the process
// environment. Call it after .env files are loaded and before extraction
// workers start.
//
// Precedence: GOMEMLIMIT (already applied by the runtime), MEMORY_LIMIT in
// bytes, then the cgroup v2 limit. MEMORY_RATIO scales the latter two.
func ConfigureFromEnv() Result {
	res := Resolve(os.Getenv, CgroupMemoryMax)
	if res.Source == SourceGoMemLimit || !res.Configured {
		return res
	}

	debug.SetMemoryLimit(res.GoMemLimit)
	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s from %s)",
		formatBytes(res.GoMemLimit),
		res.Ratio*100,
		formatBytes(res.ContainerLimit),
		res.Source,
	)
	return res
}

// Resolve computes the limit without applying it. getenv is usually
// os.Getenv; cgroupFile may be empty to skip cgroup detection.
func Resolve(getenv func(string) string, cgroupFile string) Result {
	if v := getenv("GOMEMLIMIT"); v != "" {
		res := Result{Source: SourceGoMemLimit}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			res.Configured = true
			res.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		return res
	}

	limit, source := containerLimit(getenv, cgroupFile)
	if limit <= 0 {
		logging.Debug("No container memory limit found, GOMEMLIMIT left unset")
		return Result{Source: SourceNone}
	}

	ratio := memoryRatio(getenv("MEMORY_RATIO"))
	return Result{
		Configured:     true,
		Source:         source,
		ContainerLimit: limit,
		GoMemLimit:     int64(float64(limit) * ratio),
		Ratio:          ratio,
	}
}

func containerLimit(getenv func(string) string, cgroupFile string) (int64, string) {
	if v := getenv("MEMORY_LIMIT"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && n > 0 {
			return n, SourceMemoryLimit
		}
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", v)
	}

	if cgroupFile == "" {
		return 0, SourceNone
	}
	n, ok := readCgroupLimit(cgroupFile)
	if !ok {
		return 0, SourceNone
	}
	return n, SourceCgroup
}

// readCgroupLimit parses a cgroup v2 memory.max file. "max" means unlimited.
func readCgroupLimit(path string) (int64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	s := strings.TrimSpace(string(data))
	if s == "" || s == "max" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		logging.Debug("Unparseable cgroup memory limit %q in %s", s, path)
		return 0, false
	}
	return n, true
}

func memoryRatio(v string) float64 {
	if v == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", v, err, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	if r <= 0 || r > 1 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0], using default %.2f", v, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return r
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
