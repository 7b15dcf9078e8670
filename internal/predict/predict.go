// Package predict services prediction requests for one station by feeding
// tide and sun/moon events into a single event stream.
package predict

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ngmaloney/tidecast/internal/config"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/skycal"
	"github.com/ngmaloney/tidecast/internal/tides"
	"go.uber.org/zap"
)

// riseSetRetry is how far the search skips ahead when no rise or set is
// found, as in polar day or night.
const riseSetRetry = 24 * time.Hour

// Predictor answers prediction requests for one station. It is safe for
// concurrent use; each request builds its own stream.
type Predictor struct {
	station  *tides.Station
	detector *tides.Detector
	cfg      config.Engine
	logger   *zap.Logger
}

// New binds the engine settings to a station.
func New(st *tides.Station, cfg config.Engine, logger *zap.Logger) (*Predictor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d, err := tides.NewDetector(st, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating detector: %w", err)
	}
	return &Predictor{
		station:  st,
		detector: d,
		cfg:      cfg,
		logger:   logger.With(zap.String("station", st.ID)),
	}, nil
}

// Station returns the station being predicted.
func (p *Predictor) Station() *tides.Station { return p.station }

// Source produces tide events and, for AllEvents, the unmasked sun and moon
// events of the station.
func (p *Predictor) Source() events.Source {
	return func(start, end time.Time, filter events.Filter, emit func(models.Event)) {
		if !start.Before(end) {
			return
		}
		p.detector.Detect(start, end, filter, emit)
		if filter == events.AllEvents {
			p.addSunMoonEvents(start, end, emit)
		}
	}
}

// Stream returns an empty stream fed by Source.
func (p *Predictor) Stream() *events.Stream {
	return events.New(p.Source(), p.cfg.SafetyMargin)
}

// Predict returns the events in [start, end) in time order.
func (p *Predictor) Predict(start, end time.Time, filter events.Filter) models.Prediction {
	start, end = start.UTC(), end.UTC()
	pred := p.newPrediction(start, end)
	log := p.logger.With(zap.String("request_id", pred.RequestID))

	s := p.Stream()
	s.Populate(start, end, filter)
	pred.Events = s.RangeFrom(start, end)

	log.Info("prediction complete",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Stringer("filter", filter),
		zap.Int("events", len(pred.Events)))
	return pred
}

// Raw returns level samples every step over [start, end).
func (p *Predictor) Raw(start, end time.Time, step time.Duration) models.Prediction {
	start, end = start.UTC(), end.UTC()
	pred := p.newPrediction(start, end)
	p.detector.RawSamples(start, end, step, func(e models.Event) {
		pred.Events = append(pred.Events, e)
	})
	p.logger.Debug("raw samples",
		zap.String("request_id", pred.RequestID),
		zap.Duration("step", step),
		zap.Int("samples", len(pred.Events)))
	return pred
}

// LevelAt returns the predicted level at t.
func (p *Predictor) LevelAt(t time.Time) float64 {
	return p.detector.LevelAt(t)
}

// Daylight reports whether the sun is up at the station at t. ok is false
// for stations without coordinates.
func (p *Predictor) Daylight(t time.Time) (up, ok bool) {
	c := p.station.Coordinates
	if c == nil {
		return false, false
	}
	return skycal.SunIsUp(t, *c), true
}

func (p *Predictor) newPrediction(start, end time.Time) models.Prediction {
	return models.Prediction{
		RequestID:   uuid.NewString(),
		StationID:   p.station.ID,
		StationName: p.station.Name,
		Units:       p.station.Model.Units().String(),
		Start:       start,
		End:         end,
		GeneratedAt: time.Now().UTC(),
	}
}

// addSunMoonEvents emits the sun and moon events in [start, end). Stations
// without coordinates get none.
func (p *Predictor) addSunMoonEvents(start, end time.Time, emit func(models.Event)) {
	c := p.station.Coordinates
	if c == nil {
		return
	}
	if !p.cfg.Masked(config.MaskSunrise) || !p.cfg.Masked(config.MaskSunset) {
		p.addRiseSet(start, end, *c, skycal.Sun, emit)
	}
	if !p.cfg.Masked(config.MaskMoonrise) || !p.cfg.Masked(config.MaskMoonset) {
		p.addRiseSet(start, end, *c, skycal.Moon, emit)
	}
	if !p.cfg.Masked(config.MaskPhase) {
		for e := skycal.NextMoonPhase(start); e.Time.Before(end); e = skycal.NextMoonPhase(e.Time) {
			emit(e)
		}
	}
}

func (p *Predictor) addRiseSet(start, end time.Time, c models.Coordinates, body skycal.Body, emit func(models.Event)) {
	cursor := start
	for cursor.Before(end) {
		e, ok := skycal.NextRiseOrSet(cursor, c, body, p.cfg.Epsilon)
		if !ok {
			cursor = cursor.Add(riseSetRetry)
			continue
		}
		if !e.Time.Before(end) {
			return
		}
		if !p.cfg.Masked(maskLetter(e.Type)) {
			emit(e)
		}
		cursor = e.Time
	}
}

func maskLetter(typ models.EventType) rune {
	switch typ {
	case models.EventSunrise:
		return config.MaskSunrise
	case models.EventSunset:
		return config.MaskSunset
	case models.EventMoonrise:
		return config.MaskMoonrise
	case models.EventMoonset:
		return config.MaskMoonset
	}
	return config.MaskPhase
}
