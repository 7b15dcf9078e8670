package tides

import (
	"fmt"
	"math"
	"time"

	"github.com/ngmaloney/tidecast/internal/config"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/rootfind"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

// Detector finds tide events for one station. It holds no mutable state and
// may be shared between goroutines.
type Detector struct {
	station *Station
	eps     time.Duration
	margin  time.Duration
	logger  *zap.Logger
}

// NewDetector validates the engine settings and binds them to a station.
func NewDetector(st *Station, cfg config.Engine, logger *zap.Logger) (*Detector, error) {
	if st == nil || st.Model == nil {
		return nil, fmt.Errorf("station has no harmonic model")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		station: st,
		eps:     cfg.Epsilon,
		margin:  cfg.SafetyMargin,
		logger:  logger.With(zap.String("station", st.ID)),
	}, nil
}

// Station returns the station the detector was built for.
func (d *Detector) Station() *Station { return d.station }

// Detect emits the station's tide events with corrected instants in
// [start, end), in no particular order. An inverted window emits nothing.
func (d *Detector) Detect(start, end time.Time, filter events.Filter, emit func(models.Event)) {
	if !start.Before(end) {
		return
	}
	st := d.station
	needInterpolation := st.IsSubordinate() && filter == events.AllEvents &&
		(st.MarkLevel != nil || !st.haveFloodBegins() || !st.haveEbbBegins())

	var known []models.Event
	d.addSimpleEvents(start, end, filter, func(e models.Event) {
		emit(e)
		if needInterpolation && d.isKnown(e) {
			known = append(known, e)
		}
	})

	if needInterpolation {
		d.addInterpolatedEvents(start, end, known, emit)
	}
}

// addSimpleEvents walks the reference model from extremum to extremum and
// searches each inter-extremum interval for slack and mark crossings.
func (d *Detector) addSimpleEvents(start, end time.Time, filter events.Filter, emit func(models.Event)) {
	st := d.station
	var minOffset, maxOffset time.Duration
	if st.IsSubordinate() {
		minOffset, maxOffset = st.Offsets.timeBounds()
	}

	inWindow := func(e models.Event) {
		if !e.Time.Before(start) && e.Time.Before(end) {
			emit(e)
		}
	}

	searchMark := !st.IsSubordinate() && st.MarkLevel != nil && filter == events.AllEvents
	if searchMark && !d.withinEnvelope(*st.MarkLevel) {
		d.logger.Debug("mark level outside model envelope", zap.Float64("mark", *st.MarkLevel))
		searchMark = false
	}

	loopTime := start.Add(-maxOffset)
	loopEnd := end.Add(-minOffset)
	count := 0
	for !loopTime.After(loopEnd) {
		previous := loopTime

		t, typ := d.nextMaxMin(loopTime)
		loopTime = t
		inWindow(d.finishExtremum(t, typ))
		count++

		if filter != events.MaxMinOnly && st.IsCurrent() &&
			((typ == models.EventMax && st.haveFloodBegins()) ||
				(typ == models.EventMin && st.haveEbbBegins())) {
			if ct, rising, ok := rootfind.Crossing(d.markFunc(0), previous, loopTime, d.eps); ok {
				inWindow(d.finishSlack(ct, rising))
			}
		}

		if searchMark {
			if ct, rising, ok := rootfind.Crossing(d.markFunc(*st.MarkLevel), previous, loopTime, d.eps); ok {
				inWindow(d.finishMark(ct, rising, st.Model.Level(ct)))
			}
		}
	}
	d.logger.Debug("scanned reference model",
		zap.Time("start", start), zap.Time("end", end),
		zap.Stringer("filter", filter), zap.Int("extrema", count))
}

// nextMaxMin returns the first extremum after t.
//
// The step is bounded so it cannot jump over a zero of the first derivative
// (using the bound on the second derivative) nor over a turning point of
// the first derivative (using the bound on the third).
func (d *Detector) nextMaxMin(t time.Time) (time.Time, models.EventType) {
	m := d.station.Model
	f := func(t time.Time, order int) float64 { return m.Derivative(t, order+1) }
	maxFp := m.DerivativeMax(2)
	maxFpp := m.DerivativeMax(3)

	tLeft := t
	fLeft := f(tLeft, 0)
	for fLeft == 0 {
		tLeft = tLeft.Add(d.eps)
		fLeft = f(tLeft, 0)
	}

	typ := models.EventMin
	scale := 1.0
	if fLeft > 0 {
		typ = models.EventMax
		scale = -1.0
		fLeft = -fLeft
	}

	for {
		step1 := math.Abs(fLeft) / maxFp
		dfLeft := scale * f(tLeft, 1)
		step2 := math.Abs(dfLeft) / maxFpp

		var step float64
		if dfLeft < 0 {
			// Derivative is heading the wrong way.
			step = step1 + step2
		} else {
			step = math.Max(step1, step2)
		}
		stepDur := time.Duration(step * float64(time.Second))
		if stepDur < d.eps {
			stepDur = d.eps
		}

		tRight := tLeft.Add(stepDur)
		fRight := scale * f(tRight, 0)
		// An exact zero is skipped; if the sign did not change it was an
		// inflection and the walk continues.
		for fRight == 0 {
			tRight = tRight.Add(d.eps)
			fRight = scale * f(tRight, 0)
		}

		if fRight > 0 {
			return rootfind.FindZero(f, tLeft, tRight, d.eps), typ
		}
		tLeft, fLeft = tRight, fRight
	}
}

// withinEnvelope reports whether the reference model can reach level.
func (d *Detector) withinEnvelope(level float64) bool {
	m := d.station.Model
	return level >= m.MinLevelHeuristic() && level <= m.MaxLevelHeuristic()
}

// markFunc is level - mark with its first derivative.
func (d *Detector) markFunc(mark float64) rootfind.Func {
	m := d.station.Model
	return func(t time.Time, order int) float64 {
		if order == 0 {
			return m.Level(t) - mark
		}
		return m.Derivative(t, 1)
	}
}

// isKnown reports whether e can anchor subordinate interpolation.
func (d *Detector) isKnown(e models.Event) bool {
	switch e.Type {
	case models.EventMax, models.EventMin:
		return true
	case models.EventSlackRise:
		return d.station.haveFloodBegins()
	case models.EventSlackFall:
		return d.station.haveEbbBegins()
	}
	return false
}

// finishExtremum applies subordinate offsets to an extremum found at t.
func (d *Detector) finishExtremum(t time.Time, typ models.EventType) models.Event {
	st := d.station
	level := st.Model.Level(t)
	e := models.Event{Time: t, Type: typ, Level: models.Float(level), IsCurrent: st.IsCurrent()}
	if !st.IsSubordinate() {
		return e
	}

	o := st.Offsets
	e.Uncorrected = models.Instant(t)
	e.UncorrectedLevel = models.Float(level)

	useMin := typ == models.EventMin
	if e.IsMinCurrent() {
		// A weak ebb maximum is corrected like a minimum and vice versa.
		useMin = !useMin
	}
	switch {
	case typ == models.EventMax && useMin:
		e.Time = t.Add(beginsOr(o.EbbBegins, o.MinTimeAdd))
	case typ == models.EventMin && !useMin:
		e.Time = t.Add(beginsOr(o.FloodBegins, o.MaxTimeAdd))
	case useMin:
		e.Time = t.Add(o.MinTimeAdd)
	default:
		e.Time = t.Add(o.MaxTimeAdd)
	}
	if useMin {
		level = level*o.minMultiply() + o.MinLevelAdd
	} else {
		level = level*o.maxMultiply() + o.MaxLevelAdd
	}
	e.Level = models.Float(level)
	return e
}

func beginsOr(begins *time.Duration, fallback time.Duration) time.Duration {
	if begins != nil {
		return *begins
	}
	return fallback
}

// finishSlack builds a slack event found on the reference model at t. For
// subordinate stations this is only reached when the matching begins offset
// exists.
func (d *Detector) finishSlack(t time.Time, rising bool) models.Event {
	st := d.station
	typ := models.EventSlackFall
	if rising {
		typ = models.EventSlackRise
	}
	level := st.Model.Level(t)
	e := models.Event{Time: t, Type: typ, Level: models.Float(level), IsCurrent: st.IsCurrent()}
	if st.IsSubordinate() {
		e.Uncorrected = models.Instant(t)
		e.UncorrectedLevel = models.Float(level)
		if rising {
			e.Time = t.Add(*st.Offsets.FloodBegins)
		} else {
			e.Time = t.Add(*st.Offsets.EbbBegins)
		}
	}
	return e
}

func (d *Detector) finishMark(t time.Time, rising bool, level float64) models.Event {
	typ := models.EventMarkFall
	if rising {
		typ = models.EventMarkRise
	}
	return models.Event{Time: t, Type: typ, Level: models.Float(level), IsCurrent: d.station.IsCurrent()}
}

// RawSamples emits the level every step over [start, end).
func (d *Detector) RawSamples(start, end time.Time, step time.Duration, emit func(models.Event)) {
	if step <= 0 {
		panic(fmt.Sprintf("tides: non-positive sample step %v", step))
	}
	if !start.Before(end) {
		return
	}

	level := d.station.Model.Level
	if d.station.IsSubordinate() {
		bracket := d.knownStream()
		bracket.Populate(start.Add(-day), end.Add(day), events.KnownTideEvents)
		level = func(t time.Time) float64 { return d.levelFrom(bracket, t) }
	}
	for t := start; t.Before(end); t = t.Add(step) {
		emit(models.Event{
			Time:      t,
			Type:      models.EventRawSample,
			Level:     models.Float(level(t)),
			IsCurrent: d.station.IsCurrent(),
		})
	}
}
