// Package harmonics evaluates tide levels and their time derivatives from a
// fixed set of harmonic constituents.
package harmonics

import (
	"fmt"
	"math"
	"strings"
)

// Constituent is one harmonic term of a station's tide model.
//
// NodeFactors and EquilibriumArgs are yearly tables starting at FirstYear.
// Years outside the table use the nearest tabulated year; an empty table
// means a node factor of 1 and an equilibrium argument of 0.
type Constituent struct {
	Name            string
	Speed           float64   // degrees per hour
	Amplitude       float64   // station units
	Phase           float64   // Greenwich phase lag, degrees
	FirstYear       int       // year of NodeFactors[0] / EquilibriumArgs[0]
	NodeFactors     []float64 // dimensionless
	EquilibriumArgs []float64 // V0+u, degrees
}

// radiansPerSecond converts the constituent speed to rad/s.
func (c Constituent) radiansPerSecond() float64 {
	return c.Speed * math.Pi / 180.0 / 3600.0
}

// NodeFactor returns the node factor f for the given year.
func (c Constituent) NodeFactor(year int) float64 {
	if len(c.NodeFactors) == 0 {
		return 1.0
	}
	return c.NodeFactors[clampIndex(year-c.FirstYear, len(c.NodeFactors))]
}

// EquilibriumArg returns V0+u for the given year in radians.
func (c Constituent) EquilibriumArg(year int) float64 {
	if len(c.EquilibriumArgs) == 0 {
		return 0
	}
	return c.EquilibriumArgs[clampIndex(year-c.FirstYear, len(c.EquilibriumArgs))] * math.Pi / 180.0
}

// lastYear returns the last tabulated year, or FirstYear for untabulated
// constituents.
func (c Constituent) lastYear() int {
	n := len(c.NodeFactors)
	if len(c.EquilibriumArgs) > n {
		n = len(c.EquilibriumArgs)
	}
	if n == 0 {
		return c.FirstYear
	}
	return c.FirstYear + n - 1
}

func (c Constituent) validate() error {
	for _, v := range []float64{c.Speed, c.Amplitude, c.Phase} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("constituent %s: non-finite value", c.Name)
		}
	}
	if c.Amplitude < 0 {
		return fmt.Errorf("constituent %s: negative amplitude %g", c.Name, c.Amplitude)
	}
	if c.Amplitude > 0 && c.Speed <= 0 {
		return fmt.Errorf("constituent %s: speed must be positive, got %g", c.Name, c.Speed)
	}
	for _, f := range c.NodeFactors {
		if math.IsNaN(f) || f < 0 {
			return fmt.Errorf("constituent %s: invalid node factor %g", c.Name, f)
		}
	}
	return nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Units tags what a model predicts.
type Units int

const (
	Feet Units = iota
	Meters
	Knots
)

// IsCurrent reports whether the units describe a current (velocity) station.
func (u Units) IsCurrent() bool {
	return u == Knots
}

func (u Units) String() string {
	switch u {
	case Feet:
		return "ft"
	case Meters:
		return "m"
	case Knots:
		return "kt"
	default:
		return fmt.Sprintf("Units(%d)", int(u))
	}
}

// ParseUnits accepts the common spellings used in harmonics files.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ft", "feet", "foot":
		return Feet, nil
	case "m", "meters", "metres", "meter", "metre":
		return Meters, nil
	case "kt", "kts", "knots", "knot":
		return Knots, nil
	}
	return 0, fmt.Errorf("unknown units %q", s)
}
