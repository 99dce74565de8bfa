package certpress

import "runtime"

// Render worker bounds.
const (
	// MinWorkers ensures at least one render runs.
	MinWorkers = 1

	// MaxWorkers caps parallel renders; each holds a full-size RGBA
	// canvas (~40MB for the stock template).
	MaxWorkers = 8

	// cpuDivisor leaves headroom for JPEG encoding and the browser.
	cpuDivisor = 2
)

// ResolveWorkers determines how many certificates render at once.
// An explicit positive value wins; otherwise half of GOMAXPROCS (set by
// automaxprocs in containers), clamped to [MinWorkers, MaxWorkers].
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
