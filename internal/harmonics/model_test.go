package harmonics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// m2 is a bare semidiurnal constituent with no yearly tables.
func m2(amp, phase float64) Constituent {
	return Constituent{Name: "M2", Speed: 28.9841042, Amplitude: amp, Phase: phase}
}

func TestLevel_SingleConstituent(t *testing.T) {
	m, err := New([]Constituent{m2(2.0, 30)}, 1.5, Feet)
	require.NoError(t, err)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	since := at.Sub(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Seconds()
	w := 28.9841042 * math.Pi / 180 / 3600
	want := 1.5 + 2.0*math.Cos(w*since-30*math.Pi/180)

	assert.InDelta(t, want, m.Level(at), 1e-9)
	assert.InDelta(t, m.Level(at)-1.5, m.Derivative(at, 0), 1e-12)
}

func TestLevel_UsesYearTables(t *testing.T) {
	c := Constituent{
		Name:            "K1",
		Speed:           15.0410686,
		Amplitude:       1.0,
		FirstYear:       2023,
		NodeFactors:     []float64{0.9, 1.1},
		EquilibriumArgs: []float64{10, 200},
	}
	m, err := New([]Constituent{c}, 0, Meters)
	require.NoError(t, err)

	tests := []struct {
		name   string
		at     time.Time
		factor float64
		arg    float64
	}{
		{"first tabulated year", time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC), 0.9, 10},
		{"second tabulated year", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), 1.1, 200},
		{"clamped past the table", time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC), 1.1, 200},
		{"clamped before the table", time.Date(2001, 5, 5, 0, 0, 0, 0, time.UTC), 0.9, 10},
	}
	w := 15.0410686 * math.Pi / 180 / 3600
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since := tt.at.Sub(time.Date(tt.at.Year(), 1, 1, 0, 0, 0, 0, time.UTC)).Seconds()
			want := tt.factor * math.Cos(w*since+tt.arg*math.Pi/180)
			assert.InDelta(t, want, m.Level(tt.at), 1e-9)
		})
	}
}

func TestDerivative_MatchesFiniteDifference(t *testing.T) {
	cs := []Constituent{
		m2(1.8, 40),
		{Name: "S2", Speed: 30.0, Amplitude: 0.4, Phase: 70, FirstYear: 2024, NodeFactors: []float64{1.0, 1.2}, EquilibriumArgs: []float64{0, 90}},
		{Name: "K1", Speed: 15.0410686, Amplitude: 0.9, Phase: 200},
	}
	m, err := New(cs, 0, Feet)
	require.NoError(t, err)

	const h = 0.5 // seconds
	dt := time.Duration(h * float64(time.Second))

	times := map[string]time.Time{
		"mid year":            time.Date(2024, 7, 1, 3, 0, 0, 0, time.UTC),
		"inside blend before": time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC),
		"inside blend after":  time.Date(2025, 1, 1, 0, 20, 0, 0, time.UTC),
	}
	for name, at := range times {
		t.Run(name, func(t *testing.T) {
			for order := 1; order <= MaxOrder; order++ {
				numeric := (m.Derivative(at.Add(dt), order-1) - m.Derivative(at.Add(-dt), order-1)) / (2 * h)
				analytic := m.Derivative(at, order)
				scale := m.DerivativeMax(order)
				assert.InDelta(t, numeric, analytic, scale*1e-3, "order %d", order)
			}
		})
	}
}

func TestLevel_ContinuousAcrossNewYear(t *testing.T) {
	c := Constituent{
		Name: "M2", Speed: 28.9841042, Amplitude: 2.0,
		FirstYear: 2024, NodeFactors: []float64{0.95, 1.05}, EquilibriumArgs: []float64{0, 45},
	}
	m, err := New([]Constituent{c}, 0, Feet)
	require.NoError(t, err)

	boundary := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, edge := range []time.Duration{0, blendInterval} {
		for order := 0; order <= 2; order++ {
			before := m.Derivative(boundary.Add(edge-time.Millisecond), order)
			after := m.Derivative(boundary.Add(edge+time.Millisecond), order)
			jump := math.Abs(after - before)
			assert.Less(t, jump, m.DerivativeMax(order+1)*0.01+1e-12,
				"order %d jumps by %g at boundary%+v", order, jump, edge)
		}
	}
}

func TestDerivativeMax_Bounds(t *testing.T) {
	m, err := New([]Constituent{m2(1.2, 0), {Name: "O1", Speed: 13.9430356, Amplitude: 0.7, Phase: 110}}, 0, Knots)
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		at := start.Add(time.Duration(i) * 17 * time.Minute)
		for order := 0; order <= MaxOrder; order++ {
			assert.LessOrEqual(t, math.Abs(m.Derivative(at, order)), m.DerivativeMax(order))
		}
	}
}

func TestMaxAmplitudeHeuristic(t *testing.T) {
	var cs []Constituent
	for i := 1; i <= 8; i++ {
		cs = append(cs, Constituent{Name: "C", Speed: float64(10 * i), Amplitude: float64(i)})
	}
	m, err := New(cs, 3, Meters)
	require.NoError(t, err)

	// Six largest of 1..8.
	assert.InDelta(t, 8.0+7+6+5+4+3, m.MaxAmplitudeHeuristic(), 1e-12)
	assert.InDelta(t, 3+33.0, m.MaxLevelHeuristic(), 1e-12)
	assert.InDelta(t, 3-33.0, m.MinLevelHeuristic(), 1e-12)
	assert.False(t, m.IsCurrent())
	assert.Equal(t, Meters, m.Units())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		cs    []Constituent
		datum float64
	}{
		{"no constituents", nil, 0},
		{"non-finite datum", []Constituent{m2(1, 0)}, math.NaN()},
		{"negative amplitude", []Constituent{m2(-1, 0)}, 0},
		{"zero speed", []Constituent{{Name: "Z0", Amplitude: 1}}, 0},
		{"all zero amplitude", []Constituent{m2(0, 0)}, 0},
		{"infinite phase", []Constituent{m2(1, math.Inf(1))}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cs, tt.datum, Feet)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidModel))
		})
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    Units
		wantErr bool
	}{
		{"feet", Feet, false},
		{" M ", Meters, false},
		{"knots", Knots, false},
		{"furlongs", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnits(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseUnits(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	assert.True(t, Knots.IsCurrent())
	assert.Equal(t, "kt", Knots.String())
}
