package harmonics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidModel is returned by New when the constituent table cannot
// produce a usable model.
var ErrInvalidModel = errors.New("invalid harmonic model")

const (
	// MaxOrder is the highest derivative order Derivative supports.
	MaxOrder = 3

	// numConstForAmplitude is how many of the largest constituents feed the
	// amplitude heuristic.
	numConstForAmplitude = 6

	// derivativeSafety inflates the derivative bounds a little.
	derivativeSafety = 1.1
)

// blendInterval is half the window over which two years' coefficients are
// blended around each new year.
const blendInterval = time.Hour

// Model is an immutable harmonic tide model. It is safe for concurrent use.
type Model struct {
	constituents []Constituent
	speeds       []float64 // rad/s, parallel to constituents
	datum        float64
	units        Units

	maxDt        [MaxOrder + 1]float64
	maxAmplitude float64
}

// New builds a model from constituents, a datum and a unit tag.
func New(constituents []Constituent, datum float64, units Units) (*Model, error) {
	if len(constituents) == 0 {
		return nil, fmt.Errorf("%w: no constituents", ErrInvalidModel)
	}
	if math.IsNaN(datum) || math.IsInf(datum, 0) {
		return nil, fmt.Errorf("%w: non-finite datum", ErrInvalidModel)
	}

	m := &Model{
		constituents: append([]Constituent(nil), constituents...),
		speeds:       make([]float64, len(constituents)),
		datum:        datum,
		units:        units,
	}
	for i, c := range m.constituents {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		m.speeds[i] = c.radiansPerSecond()
	}

	first, last := m.yearSpan()
	amps := make([]float64, len(m.constituents))
	for year := first; year <= last; year++ {
		for i, c := range m.constituents {
			amps[i] = c.Amplitude * c.NodeFactor(year)
		}
		for order := 0; order <= MaxOrder; order++ {
			var sum float64
			for i, a := range amps {
				sum += a * math.Pow(m.speeds[i], float64(order))
			}
			if sum > m.maxDt[order] {
				m.maxDt[order] = sum
			}
		}

		sorted := append([]float64(nil), amps...)
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
		var sum float64
		for i := 0; i < numConstForAmplitude && i < len(sorted); i++ {
			sum += sorted[i]
		}
		if sum > m.maxAmplitude {
			m.maxAmplitude = sum
		}
	}
	for order := range m.maxDt {
		m.maxDt[order] *= derivativeSafety
	}

	if m.maxAmplitude <= 0 {
		return nil, fmt.Errorf("%w: all amplitudes are zero", ErrInvalidModel)
	}
	return m, nil
}

// yearSpan covers every tabulated year of every constituent.
func (m *Model) yearSpan() (first, last int) {
	first, last = math.MaxInt, math.MinInt
	tabulated := false
	for _, c := range m.constituents {
		if len(c.NodeFactors) == 0 && len(c.EquilibriumArgs) == 0 {
			continue
		}
		tabulated = true
		if c.FirstYear < first {
			first = c.FirstYear
		}
		if y := c.lastYear(); y > last {
			last = y
		}
	}
	if !tabulated {
		return 0, 0
	}
	return first, last
}

// Datum returns the constant offset added to the harmonic sum.
func (m *Model) Datum() float64 { return m.datum }

// Units returns the unit tag of predicted values.
func (m *Model) Units() Units { return m.units }

// IsCurrent reports whether the model predicts current velocity.
func (m *Model) IsCurrent() bool { return m.units.IsCurrent() }

// Constituents returns a copy of the constituent table.
func (m *Model) Constituents() []Constituent {
	return append([]Constituent(nil), m.constituents...)
}

// MaxAmplitudeHeuristic is a cheap, deliberately generous bound on the
// harmonic sum's excursion from the datum. It sizes search brackets and axes;
// it is not an estimate of real extremes.
func (m *Model) MaxAmplitudeHeuristic() float64 { return m.maxAmplitude }

// MinAmplitudeHeuristic mirrors MaxAmplitudeHeuristic below the datum.
func (m *Model) MinAmplitudeHeuristic() float64 { return -m.maxAmplitude }

// MaxLevelHeuristic is datum + MaxAmplitudeHeuristic.
func (m *Model) MaxLevelHeuristic() float64 { return m.datum + m.maxAmplitude }

// MinLevelHeuristic is datum - MaxAmplitudeHeuristic.
func (m *Model) MinLevelHeuristic() float64 { return m.datum - m.maxAmplitude }

// DerivativeMax bounds |d^order/dt^order level| in units per second^order.
func (m *Model) DerivativeMax(order int) float64 {
	if order < 0 || order > MaxOrder {
		panic(fmt.Sprintf("harmonics: derivative order %d out of range", order))
	}
	return m.maxDt[order]
}

// Level returns the predicted level (datum included) at t.
func (m *Model) Level(t time.Time) float64 {
	return m.datum + m.Derivative(t, 0)
}

// Derivative returns the order-th time derivative of the harmonic sum at t,
// in units per second^order. Order 0 is the sum without the datum.
func (m *Model) Derivative(t time.Time, order int) float64 {
	if order < 0 || order > MaxOrder {
		panic(fmt.Sprintf("harmonics: derivative order %d out of range", order))
	}
	t = t.UTC()
	year := t.Year()
	epoch := newYear(year)

	if since := t.Sub(epoch); since <= blendInterval {
		return m.blend(t, order, year-1, since.Seconds()/blendInterval.Seconds())
	}
	if till := newYear(year + 1).Sub(t); till <= blendInterval {
		return m.blend(t, order, year, -till.Seconds()/blendInterval.Seconds())
	}
	return m.sum(year, t.Sub(epoch).Seconds(), order)
}

// sum evaluates one year's coefficients at sinceEpoch seconds past 1 January.
func (m *Model) sum(year int, sinceEpoch float64, order int) float64 {
	shift := math.Pi / 2 * float64(order)
	var total float64
	for i, c := range m.constituents {
		if c.Amplitude == 0 {
			continue
		}
		w := m.speeds[i]
		term := c.Amplitude * c.NodeFactor(year) *
			math.Cos(shift+w*sinceEpoch+c.EquilibriumArg(year)-c.Phase*math.Pi/180.0)
		for k := 0; k < order; k++ {
			term *= w
		}
		total += term
	}
	return total
}

// blend interpolates smoothly between firstYear and firstYear+1 so the level
// and its derivatives stay continuous across new year. x runs from -1 to 1
// through the blend window.
func (m *Model) blend(t time.Time, order, firstYear int, x float64) float64 {
	var fl, fr [MaxOrder + 1]float64
	leftSince := t.Sub(newYear(firstYear)).Seconds()
	rightSince := t.Sub(newYear(firstYear + 1)).Seconds()
	for n := 0; n <= order; n++ {
		fl[n] = m.sum(firstYear, leftSince, n)
		fr[n] = m.sum(firstYear+1, rightSince, n)
	}

	f := fl[order]
	fact := 1.0
	for n := 0; n <= order; n++ {
		f += fact * blendWeight(x, n) * (fr[order-n] - fl[order-n])
		fact *= float64(order-n) / float64(n+1) / blendInterval.Seconds()
	}
	return f
}

// blendWeight is the n-th derivative of
//
//	w(x) = 1/2 + (15/16)x - (5/8)x^3 + (3/16)x^5 on (-1, 1),
//
// 0 below and 1 above.
func blendWeight(x float64, n int) float64 {
	x2 := x * x
	if x2 >= 1.0 {
		if n == 0 && x > 0 {
			return 1.0
		}
		return 0.0
	}
	switch n {
	case 0:
		return ((3.0*x2-10.0)*x2+15.0)*x/16.0 + 0.5
	case 1:
		return ((x2-2.0)*x2 + 1.0) * (15.0 / 16.0)
	case 2:
		return (x2 - 1.0) * x * (15.0 / 4.0)
	case 3:
		return (3.0*x2 - 1.0) * (15.0 / 4.0)
	}
	panic(fmt.Sprintf("harmonics: blend weight derivative %d", n))
}

func newYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
