package rootfind

import (
	"math"
	"time"
)

// SecantOptions bound the secant refiner.
type SecantOptions struct {
	// Delta is the first secant step away from the seed.
	Delta time.Duration
	// MaxIterations caps the number of secant updates.
	MaxIterations int
	// MaxDrift is how far from the seed the iterate may wander.
	MaxDrift time.Duration
	// Tolerance stops iteration once the correction is smaller.
	Tolerance time.Duration
	// Probe is how far before the root the direction check samples.
	Probe time.Duration
}

// DefaultSecantOptions matches the sun and moon altitude search.
func DefaultSecantOptions(tolerance time.Duration) SecantOptions {
	return SecantOptions{
		Delta:         time.Duration(0.002 * 24 * float64(time.Hour)),
		MaxIterations: 12,
		MaxDrift:      12 * time.Hour,
		Tolerance:     tolerance,
		Probe:         time.Second,
	}
}

// Secant solves f(t) = target starting from seed. ok is false when the
// secant slope goes flat, the iteration cap is hit, or the iterate drifts
// more than MaxDrift from the seed. rising reports whether f is increasing
// through the solution.
func Secant(f func(time.Time) float64, seed time.Time, target float64, opts SecantOptions) (t time.Time, rising, ok bool) {
	// Work in seconds from the seed to keep float precision.
	at := func(s float64) float64 { return f(seed.Add(seconds(s))) }

	del := opts.Delta.Seconds()
	tol := opts.Tolerance.Seconds()
	drift := opts.MaxDrift.Seconds()

	prev := at(0)
	guess := del
	cur := at(guess)
	deriv := (cur - prev) / del
	if deriv == 0 {
		return time.Time{}, false, false
	}
	adj := -(cur - target) / deriv

	for i := 0; math.Abs(adj) >= tol; i++ {
		if i == opts.MaxIterations {
			return time.Time{}, false, false
		}
		guess += adj
		if math.Abs(guess) > drift {
			return time.Time{}, false, false
		}
		prev = cur
		cur = at(guess)
		deriv = (cur - prev) / adj
		if deriv == 0 {
			return time.Time{}, false, false
		}
		adj = -(cur - target) / deriv
	}

	t = seed.Add(seconds(guess))
	rising = f(t.Add(-opts.Probe)) < cur
	return t, rising, true
}
