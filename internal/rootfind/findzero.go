// Package rootfind locates zeros of smooth scalar functions of time.
//
// FindZero is a bracketed Newton/bisection hybrid for functions whose first
// derivative is available in closed form. Crossing wraps it for mark and
// slack searches where the bracket may be rotten. Secant is a guarded secant
// refiner for functions without an analytic derivative.
package rootfind

import (
	"fmt"
	"math"
	"time"
)

// Func evaluates a function (order 0) or its first derivative (order 1)
// with respect to time in seconds.
type Func func(t time.Time, order int) float64

// FindZero returns an instant within eps of a zero of f in [tl, tr].
//
// f(tl) and f(tr) must be non-zero and of opposite sign, tl must precede tr
// and eps must be positive; violations panic.
func FindZero(f Func, tl, tr time.Time, eps time.Duration) time.Time {
	if eps <= 0 {
		panic(fmt.Sprintf("rootfind: non-positive precision %v", eps))
	}
	if !tl.Before(tr) {
		panic(fmt.Sprintf("rootfind: empty bracket [%v, %v]", tl, tr))
	}

	fl := f(tl, 0)
	fr := f(tr, 0)
	scale := 1.0
	if fl > 0 {
		scale = -1.0
		fl, fr = -fl, -fr
	}
	if !(fl < 0 && fr > 0) {
		panic(fmt.Sprintf("rootfind: bracket does not straddle a zero (f=%g, %g)", fl*scale, fr*scale))
	}

	var (
		t       time.Time
		ft, fp  float64
		fThresh float64
		started bool
	)
	for tr.Sub(tl) > eps {
		bisect := true
		if started && math.Abs(ft) <= fThresh && newtonConsistent(t, tl, tr, ft, fp) {
			dt := -ft / fp
			if math.Abs(dt) < eps.Seconds() {
				if ft < 0 {
					dt = eps.Seconds()
				} else {
					dt = -eps.Seconds()
				}
			}
			offset := t.Sub(tl).Seconds() + dt
			if offset > 0 && offset < tr.Sub(tl).Seconds() {
				t = tl.Add(seconds(offset))
				if t.After(tl) && t.Before(tr) {
					bisect = false
				}
			}
			fThresh = math.Abs(ft) / 2
		}
		if bisect {
			t = tl.Add(tr.Sub(tl) / 2)
			fThresh = math.Max(fr, -fl)
		}
		started = true

		ft = scale * f(t, 0)
		if ft == 0 {
			return t
		}
		if ft > 0 {
			tr, fr = t, ft
		} else {
			tl, fl = t, ft
		}
		fp = scale * f(t, 1)
	}
	return tr
}

// newtonConsistent rejects Newton steps whose derivative could not reach the
// zero inside the current bracket.
func newtonConsistent(t, tl, tr time.Time, ft, fp float64) bool {
	if ft > 0 {
		return fp > ft/t.Sub(tl).Seconds()
	}
	return fp > -ft/tr.Sub(t).Seconds()
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
