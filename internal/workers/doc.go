/*
Package workers sizes the worker pools used by the catalog.

Worker counts derive from GOMAXPROCS rather than runtime.NumCPU so that container
CPU limits are respected:

	// Preview extraction is I/O bound: 2 workers per CPU, at most 16
	n := workers.ForIO(16)

	// Custom multiplier and cap
	n := workers.Count(3.0, 24)

# Environment Variable Override

EXTRACT_WORKERS pins the pool size (still subject to the limit argument):

	EXTRACT_WORKERS=4 ./book-catalog

Invalid or non-positive values are ignored.
*/
package workers
