package tides

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/ngmaloney/tidecast/internal/config"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const m2Speed = 28.9841042 // degrees per hour

var (
	windowStart = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	windowEnd   = windowStart.Add(72 * time.Hour)
	yearStart   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m2Omega     = m2Speed * math.Pi / 180 / 3600
)

func singleM2(t *testing.T, amp, datum float64, units harmonics.Units) *harmonics.Model {
	t.Helper()
	m, err := harmonics.New([]harmonics.Constituent{{Name: "M2", Speed: m2Speed, Amplitude: amp}}, datum, units)
	require.NoError(t, err)
	return m
}

func newDetector(t *testing.T, st *Station) *Detector {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	d, err := NewDetector(st, config.Default(), logger)
	require.NoError(t, err)
	return d
}

func collect(d *Detector, start, end time.Time, filter events.Filter) []models.Event {
	var out []models.Event
	d.Detect(start, end, filter, func(e models.Event) { out = append(out, e) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func ofType(evs []models.Event, types ...models.EventType) []models.Event {
	var out []models.Event
	for _, e := range evs {
		for _, typ := range types {
			if e.Type == typ {
				out = append(out, e)
			}
		}
	}
	return out
}

// phaseError returns how far t is from the nearest instant where the M2
// argument equals target (mod 2π), as a duration.
func phaseError(t time.Time, target float64) time.Duration {
	arg := m2Omega * t.Sub(yearStart).Seconds()
	diff := math.Mod(arg-target, 2*math.Pi)
	if diff > math.Pi {
		diff -= 2 * math.Pi
	} else if diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return time.Duration(math.Abs(diff) / m2Omega * float64(time.Second))
}

func TestDetect_SingleConstituent(t *testing.T) {
	const amp, datum = 2.0, 1.0
	mark := datum
	st := &Station{ID: "M2", Model: singleM2(t, amp, datum, harmonics.Feet), MarkLevel: &mark}
	d := newDetector(t, st)
	eps := config.Default().Epsilon

	evs := collect(d, windowStart, windowEnd, events.AllEvents)
	extrema := ofType(evs, models.EventMax, models.EventMin)

	periodHours := 360 / m2Speed
	want := 2 * windowEnd.Sub(windowStart).Hours() / periodHours
	assert.InDelta(t, want, float64(len(extrema)), 1)

	for i, e := range extrema {
		require.NotNil(t, e.Level)
		assert.Nil(t, e.Uncorrected, "reference events carry no uncorrected instant")
		switch e.Type {
		case models.EventMax:
			assert.InDelta(t, datum+amp, *e.Level, 1e-4)
			assert.LessOrEqual(t, phaseError(e.Time, 0), eps)
		case models.EventMin:
			assert.InDelta(t, datum-amp, *e.Level, 1e-4)
			assert.LessOrEqual(t, phaseError(e.Time, math.Pi), eps)
		}
		if i > 0 {
			assert.NotEqual(t, extrema[i-1].Type, e.Type, "extrema alternate")
		}
	}

	for _, e := range ofType(evs, models.EventMarkFall) {
		assert.LessOrEqual(t, phaseError(e.Time, math.Pi/2), eps)
	}
	for _, e := range ofType(evs, models.EventMarkRise) {
		assert.LessOrEqual(t, phaseError(e.Time, 3*math.Pi/2), eps)
	}
	// One rise and one fall per period.
	rises, falls := len(ofType(evs, models.EventMarkRise)), len(ofType(evs, models.EventMarkFall))
	assert.InDelta(t, rises, falls, 1)
	assert.InDelta(t, len(extrema), rises+falls, 2)

	for _, e := range evs {
		assert.False(t, e.Time.Before(windowStart))
		assert.True(t, e.Time.Before(windowEnd))
	}
}

func TestDetect_MonotonicBetweenExtrema(t *testing.T) {
	m, err := harmonics.New([]harmonics.Constituent{
		{Name: "M2", Speed: m2Speed, Amplitude: 1.6, Phase: 20},
		{Name: "S2", Speed: 30.0, Amplitude: 0.5, Phase: 75},
		{Name: "N2", Speed: 28.4397295, Amplitude: 0.35, Phase: 350},
		{Name: "K1", Speed: 15.0410686, Amplitude: 0.9, Phase: 160},
		{Name: "O1", Speed: 13.9430356, Amplitude: 0.6, Phase: 140},
	}, 3.2, harmonics.Feet)
	require.NoError(t, err)
	d := newDetector(t, &Station{ID: "MIX", Model: m})
	eps := config.Default().Epsilon

	extrema := collect(d, windowStart, windowStart.Add(10*24*time.Hour), events.MaxMinOnly)
	require.NotEmpty(t, extrema)

	for i := 1; i < len(extrema); i++ {
		a, b := extrema[i-1], extrema[i]
		require.NotEqual(t, a.Type, b.Type, "extrema alternate at %v", b.Time)
		sign := 1.0
		if a.Type == models.EventMax {
			sign = -1.0
		}
		prev := m.Level(a.Time.Add(eps))
		for at := a.Time.Add(eps + 5*time.Minute); at.Before(b.Time.Add(-eps)); at = at.Add(5 * time.Minute) {
			cur := m.Level(at)
			assert.GreaterOrEqual(t, sign*(cur-prev), -1e-9, "level reverses between %v and %v", a.Time, b.Time)
			prev = cur
		}
	}
}

func TestDetect_MaxMinOnlyFilter(t *testing.T) {
	mark := 0.5
	st := &Station{ID: "C", Model: singleM2(t, 2, 0, harmonics.Knots), MarkLevel: &mark}
	d := newDetector(t, st)

	for _, e := range collect(d, windowStart, windowEnd, events.MaxMinOnly) {
		assert.True(t, e.IsMaxMin(), "unexpected %s", e.Type)
	}
	known := collect(d, windowStart, windowEnd, events.KnownTideEvents)
	assert.NotEmpty(t, ofType(known, models.EventSlackRise, models.EventSlackFall))
	assert.Empty(t, ofType(known, models.EventMarkRise, models.EventMarkFall))
}

func TestDetect_CurrentSlack(t *testing.T) {
	st := &Station{ID: "CUR", Model: singleM2(t, 2.5, 0, harmonics.Knots)}
	d := newDetector(t, st)
	eps := config.Default().Epsilon

	evs := collect(d, windowStart, windowEnd, events.AllEvents)
	slackRise := ofType(evs, models.EventSlackRise)
	slackFall := ofType(evs, models.EventSlackFall)
	require.NotEmpty(t, slackRise)
	require.NotEmpty(t, slackFall)

	for _, e := range slackRise {
		assert.True(t, e.IsCurrent)
		assert.Equal(t, "Slack, Flood Begins", e.Description())
		assert.LessOrEqual(t, phaseError(e.Time, 3*math.Pi/2), eps)
	}
	for _, e := range slackFall {
		assert.LessOrEqual(t, phaseError(e.Time, math.Pi/2), eps)
	}
	for _, e := range ofType(evs, models.EventMax) {
		assert.Equal(t, "Max Flood", e.Description())
	}
}

func TestDetect_InvertedWindow(t *testing.T) {
	d := newDetector(t, &Station{ID: "M2", Model: singleM2(t, 1, 0, harmonics.Feet)})
	assert.Empty(t, collect(d, windowEnd, windowStart, events.AllEvents))
	assert.Empty(t, collect(d, windowStart, windowStart, events.AllEvents))
}

func TestDetect_SubordinateOffsets(t *testing.T) {
	const amp = 2.0
	mark := 0.0
	offsets := &Offsets{
		MaxTimeAdd:       time.Hour,
		MinTimeAdd:       30 * time.Minute,
		MaxLevelMultiply: 0.5,
		MinLevelMultiply: 0.8,
		MaxLevelAdd:      0.1,
	}
	st := &Station{ID: "SUB", Model: singleM2(t, amp, 0, harmonics.Feet), Offsets: offsets, MarkLevel: &mark}
	d := newDetector(t, st)

	evs := collect(d, windowStart, windowEnd, events.AllEvents)
	maxes := ofType(evs, models.EventMax)
	mins := ofType(evs, models.EventMin)
	require.NotEmpty(t, maxes)
	require.NotEmpty(t, mins)

	for _, e := range maxes {
		require.NotNil(t, e.Uncorrected)
		assert.Equal(t, time.Hour, e.Time.Sub(*e.Uncorrected))
		assert.InDelta(t, amp, *e.UncorrectedLevel, 1e-4)
		assert.InDelta(t, amp*0.5+0.1, *e.Level, 1e-4)
	}
	for _, e := range mins {
		require.NotNil(t, e.Uncorrected)
		assert.Equal(t, 30*time.Minute, e.Time.Sub(*e.Uncorrected))
		assert.InDelta(t, -amp*0.8, *e.Level, 1e-4)
	}

	marks := ofType(evs, models.EventMarkRise, models.EventMarkFall)
	require.NotEmpty(t, marks, "interpolated mark crossings")
	for _, e := range marks {
		assert.Nil(t, e.Uncorrected, "interpolated events have no uncorrected instant")
		assert.InDelta(t, mark, *e.Level, 0.01)
		assert.InDelta(t, mark, d.LevelAt(e.Time), 0.01)
	}

	for _, e := range evs {
		assert.False(t, e.Time.Before(windowStart))
		assert.True(t, e.Time.Before(windowEnd))
	}
}

func TestDetect_MarkOutsideEnvelope(t *testing.T) {
	const amp = 2.0
	tests := []struct {
		name    string
		mark    float64
		offsets *Offsets
		skipped bool
	}{
		{"above reference", amp + 0.5, nil, true},
		{"below reference", -amp - 0.5, nil, true},
		{"at reference maximum", amp, nil, false},
		{"above subordinate", 5, &Offsets{MaxLevelMultiply: 0.5, MinLevelMultiply: 0.8, MaxLevelAdd: 0.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mark := tt.mark
			st := &Station{ID: "M2", Model: singleM2(t, amp, 0, harmonics.Feet), Offsets: tt.offsets, MarkLevel: &mark}
			core, logs := observer.New(zapcore.DebugLevel)
			d, err := NewDetector(st, config.Default(), zap.New(core))
			require.NoError(t, err)

			evs := collect(d, windowStart, windowEnd, events.AllEvents)
			assert.NotEmpty(t, ofType(evs, models.EventMax, models.EventMin))
			skips := logs.FilterMessage("mark level outside model envelope").Len()
			if tt.skipped {
				assert.Empty(t, ofType(evs, models.EventMarkRise, models.EventMarkFall))
				assert.Equal(t, 1, skips)
			} else {
				assert.Zero(t, skips)
			}
			if tt.offsets != nil {
				assert.Empty(t, ofType(evs, models.EventMarkRise, models.EventMarkFall))
			}
		})
	}
}

func TestDetect_SubordinateCurrentInterpolatedSlack(t *testing.T) {
	ebb := 20 * time.Minute
	offsets := &Offsets{MaxTimeAdd: 40 * time.Minute, MinTimeAdd: 10 * time.Minute, EbbBegins: &ebb}
	st := &Station{ID: "SUBC", Model: singleM2(t, 1.5, 0, harmonics.Knots), Offsets: offsets}
	d := newDetector(t, st)

	evs := collect(d, windowStart, windowEnd, events.AllEvents)
	for _, e := range ofType(evs, models.EventSlackFall) {
		require.NotNil(t, e.Uncorrected, "ebb begins offset applies directly")
		assert.Equal(t, ebb, e.Time.Sub(*e.Uncorrected))
	}
	rises := ofType(evs, models.EventSlackRise)
	require.NotEmpty(t, rises)
	for _, e := range rises {
		assert.Nil(t, e.Uncorrected, "flood begins is interpolated")
		assert.InDelta(t, 0, *e.Level, 0.01)
	}
}

func TestLevelAt_SubordinateMatchesExtrema(t *testing.T) {
	offsets := &Offsets{MaxTimeAdd: 45 * time.Minute, MinTimeAdd: 15 * time.Minute, MaxLevelMultiply: 1.2, MinLevelMultiply: 1.2}
	st := &Station{ID: "SUB", Model: singleM2(t, 1, 2, harmonics.Meters), Offsets: offsets}
	d := newDetector(t, st)

	for _, e := range collect(d, windowStart, windowStart.Add(24*time.Hour), events.MaxMinOnly) {
		assert.InDelta(t, *e.Level, d.LevelAt(e.Time), 1e-4)
	}

	ref := newDetector(t, &Station{ID: "REF", Model: st.Model})
	at := windowStart.Add(5 * time.Hour)
	assert.Equal(t, st.Model.Level(at), ref.LevelAt(at))
}

func TestRawSamples(t *testing.T) {
	d := newDetector(t, &Station{ID: "M2", Model: singleM2(t, 1, 0, harmonics.Feet)})

	var got []models.Event
	d.RawSamples(windowStart, windowStart.Add(6*time.Hour), 30*time.Minute, func(e models.Event) { got = append(got, e) })
	require.Len(t, got, 12)
	for _, e := range got {
		assert.Equal(t, models.EventRawSample, e.Type)
		assert.InDelta(t, d.LevelAt(e.Time), *e.Level, 1e-12)
	}
	assert.Panics(t, func() { d.RawSamples(windowStart, windowEnd, 0, func(models.Event) {}) })
}

func TestNewDetector_Validation(t *testing.T) {
	_, err := NewDetector(&Station{ID: "X"}, config.Default(), nil)
	assert.Error(t, err)

	bad := config.Default()
	bad.Epsilon = 0
	_, err = NewDetector(&Station{ID: "X", Model: singleM2(t, 1, 0, harmonics.Feet)}, bad, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
