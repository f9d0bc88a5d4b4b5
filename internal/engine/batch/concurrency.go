// internal/engine/batch/concurrency.go
package batch

const (
	// DefaultWorkers is the number of product pages fetched in parallel
	DefaultWorkers = 10
	// MaxWorkers keeps the shop from being overwhelmed
	MaxWorkers = 50
)

// ClampWorkers bounds a requested pool width to 1..MaxWorkers, with
// non-positive values meaning DefaultWorkers.
func ClampWorkers(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
