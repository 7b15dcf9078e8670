package rootfind

import "time"

// Crossing finds a zero of f between t1 and t2 without insisting on a clean
// bracket. The bounds may be given in either order. ok is false when f has the
// same value at both ends or does not change sign between them.
//
// rising reports whether f goes from negative to positive across the zero.
// An endpoint that is itself an exact zero is returned as is.
func Crossing(f Func, t1, t2 time.Time, eps time.Duration) (t time.Time, rising, ok bool) {
	if t1.After(t2) {
		t1, t2 = t2, t1
	}
	f1 := f(t1, 0)
	f2 := f(t2, 0)
	if f1 == f2 {
		return time.Time{}, false, false
	}

	rising = f1 < 0 || f2 > 0
	if !rising {
		f1, f2 = -f1, -f2
	}

	switch {
	case f1 == 0:
		return t1, rising, true
	case f2 == 0:
		return t2, rising, true
	case f1 < 0 && f2 > 0:
		return FindZero(f, t1, t2, eps), rising, true
	}
	return time.Time{}, false, false
}
