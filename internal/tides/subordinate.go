package tides

import (
	"time"

	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/rootfind"
	"go.uber.org/zap"
)

// maxExtension caps the doubling searches for bracketing events.
const maxExtension = 4 * 366 * day

// knownStream returns an empty stream that grows by re-running the detector
// with the KnownTideEvents filter.
func (d *Detector) knownStream() *events.Stream {
	return events.New(func(start, end time.Time, _ events.Filter, emit func(models.Event)) {
		d.Detect(start, end, events.KnownTideEvents, emit)
	}, d.margin)
}

// addInterpolatedEvents finds the subordinate slack and mark crossings that
// have no offsets of their own, by interpolating between consecutive known
// events.
func (d *Detector) addInterpolatedEvents(start, end time.Time, known []models.Event, emit func(models.Event)) {
	st := d.station
	relevant := d.knownStream()
	for _, e := range known {
		relevant.Add(e)
	}

	for delta := day; relevant.Len() == 0 && delta <= maxExtension; delta *= 2 {
		relevant.Populate(start.Add(-delta), end.Add(delta), events.KnownTideEvents)
	}
	if relevant.Len() == 0 {
		d.logger.Warn("no tide events found for interpolation", zap.Time("start", start))
		return
	}
	for delta := day; delta <= maxExtension; delta *= 2 {
		if first, _ := relevant.First(); first.Time.Before(start) {
			break
		}
		relevant.Extend(events.Backward, delta)
	}
	for delta := day; delta <= maxExtension; delta *= 2 {
		if last, _ := relevant.Last(); !last.Time.Before(end) {
			break
		}
		relevant.Extend(events.Forward, delta)
	}

	inWindow := func(e models.Event) {
		if !e.Time.Before(start) && e.Time.Before(end) {
			emit(e)
		}
	}

	// levelFrom may grow relevant, so walk a snapshot.
	snapshot := relevant.All()
	left := snapshot[0]
	for _, right := range snapshot[1:] {
		if st.IsCurrent() &&
			((left.Type == models.EventMax && !st.haveEbbBegins()) ||
				(left.Type == models.EventMin && !st.haveFloodBegins())) {
			if t, rising, ok := d.interpolatedCrossing(left, right, 0); ok {
				typ := models.EventSlackFall
				if rising {
					typ = models.EventSlackRise
				}
				inWindow(models.Event{
					Time:      t,
					Type:      typ,
					Level:     models.Float(d.levelFrom(relevant, t)),
					IsCurrent: true,
				})
			}
		}

		if st.MarkLevel != nil {
			if t, rising, ok := d.interpolatedCrossing(left, right, *st.MarkLevel); ok {
				inWindow(d.finishMark(t, rising, d.levelFrom(relevant, t)))
			}
		}

		left = right
	}
}

// interpolatedCrossing maps the mark level into the reference model's level
// scale, finds that crossing between the uncorrected instants, and maps the
// resulting instant back onto the corrected time axis.
func (d *Detector) interpolatedCrossing(e1, e2 models.Event, mark float64) (time.Time, bool, bool) {
	if e1.Uncorrected == nil || e2.Uncorrected == nil || *e1.Level == *e2.Level {
		return time.Time{}, false, false
	}
	target := *e1.UncorrectedLevel + (*e2.UncorrectedLevel-*e1.UncorrectedLevel)*
		((mark-*e1.Level)/(*e2.Level-*e1.Level))
	if !d.withinEnvelope(target) {
		return time.Time{}, false, false
	}

	ut, rising, ok := rootfind.Crossing(d.markFunc(target), *e1.Uncorrected, *e2.Uncorrected, d.eps)
	if !ok {
		return time.Time{}, false, false
	}
	frac := ut.Sub(*e1.Uncorrected).Seconds() / e2.Uncorrected.Sub(*e1.Uncorrected).Seconds()
	return e1.Time.Add(scaleDuration(e2.Time.Sub(e1.Time), frac)), rising, true
}

// LevelAt returns the predicted level at t. Reference stations evaluate the
// model; subordinate stations interpolate through the bracketing events.
func (d *Detector) LevelAt(t time.Time) float64 {
	if !d.station.IsSubordinate() {
		return d.station.Model.Level(t)
	}
	bracket := d.knownStream()
	for delta := day; bracket.Len() == 0 && delta <= maxExtension; delta *= 2 {
		bracket.Populate(t.Add(-delta), t.Add(delta), events.KnownTideEvents)
	}
	return d.levelFrom(bracket, t)
}

// levelFrom interpolates a subordinate level from the events in s, growing
// s until some event lies at or before t and another after it.
func (d *Detector) levelFrom(s *events.Stream, t time.Time) float64 {
	if s.Len() == 0 {
		return d.station.Model.Level(t)
	}

	var left, right int
	for {
		right = s.UpperBound(t)
		for delta := day; right == s.Len(); delta *= 2 {
			s.Extend(events.Forward, delta)
			right = s.UpperBound(t)
		}

		left = s.LowerBound(t)
		if s.At(left).Time.After(t) {
			if left == 0 {
				// Extending backwards may shift the right bracket too.
				for delta := day; left == 0; delta *= 2 {
					s.Extend(events.Backward, delta)
					left = s.LowerBound(t)
				}
				continue
			}
			left--
		}
		break
	}

	l, r := s.At(left), s.At(right)
	span := r.Time.Sub(l.Time).Seconds()
	frac := t.Sub(l.Time).Seconds() / span
	if *r.UncorrectedLevel == *l.UncorrectedLevel {
		return *l.Level + (*r.Level-*l.Level)*frac
	}
	ut := l.Uncorrected.Add(scaleDuration(r.Uncorrected.Sub(*l.Uncorrected), frac))
	return *l.Level + (*r.Level-*l.Level)*
		((d.station.Model.Level(ut)-*l.UncorrectedLevel)/(*r.UncorrectedLevel-*l.UncorrectedLevel))
}

func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
