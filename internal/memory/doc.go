// Package memory sets the Go soft memory limit (GOMEMLIMIT) for containerized
// deployments.
//
// Book extraction decompresses archives and parses XML concurrently, so heap
// use scales with EXTRACT_WORKERS and MAX_PREVIEW_BYTES. Without a soft limit
// the garbage collector sizes the heap against host memory and the container
// can be OOM-killed. ConfigureFromEnv reads, in order:
//
//   - GOMEMLIMIT: honored as-is; the runtime has already applied it
//   - MEMORY_LIMIT: container limit in bytes, typically from the Kubernetes
//     Downward API (resourceFieldRef: limits.memory)
//   - /sys/fs/cgroup/memory.max: the cgroup v2 limit, when not "max"
//
// MEMORY_RATIO (default 0.85) sets the share of the container limit given to
// the heap.
package memory
