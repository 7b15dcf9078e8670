package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/tidecast/internal/ports"
	"github.com/ngmaloney/tidecast/internal/predict"
	"github.com/ngmaloney/tidecast/internal/render"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/ngmaloney/tidecast/internal/tides"
	"go.uber.org/zap"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime reads s in loc, trying each accepted layout.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q: want YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339", s)
}

// window resolves --from/--to. An empty from is local midnight today and an
// empty to is days after from.
func window(from, to string, days int, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if from == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	} else {
		var err error
		if start, err = parseTime(from, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	end := start.AddDate(0, 0, days)
	if to != "" {
		var err error
		if end, err = parseTime(to, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is not after --from %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return start, end, nil
}

// location picks the display zone: the override when set, else the
// station's own zone, else UTC.
func location(override string, st *tides.Station) (*time.Location, error) {
	name := override
	if name == "" && st != nil {
		name = st.Timezone
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

// loadPredictor opens a station from the store, or the station of a saved
// port of that name, and binds the configured engine settings to it.
func (a *app) loadPredictor(stationID string) (*predict.Predictor, *time.Location, error) {
	st, err := stations.Load(a.settings.DBPath, stationID)
	if errors.Is(err, stations.ErrNotFound) {
		if port, perr := ports.NewRepository(a.settings.DBPath).GetPort(stationID); perr == nil {
			a.logger.Debug("resolved port", zap.String("port", port.Name), zap.String("station", port.StationID))
			st, err = stations.Load(a.settings.DBPath, port.StationID)
		}
	}
	if errors.Is(err, stations.ErrNotFound) {
		return nil, nil, a.emptyStoreError(err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading station: %w", err)
	}

	loc, err := location(a.settings.Timezone, st)
	if err != nil {
		return nil, nil, err
	}
	p, err := predict.New(st, a.settings.Engine, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return p, loc, nil
}

// emptyStoreError replaces err with a hint to import stations when the store
// holds none.
func (a *app) emptyStoreError(err error) error {
	empty, perr := stations.NeedsProvisioning(a.settings.DBPath)
	if perr != nil || !empty {
		return err
	}
	return fmt.Errorf("%w; run `tidecast import` or `tidecast fetch` first", stations.ErrNoStations)
}

func (a *app) renderer(loc *time.Location, format render.Format) render.Renderer {
	return render.Renderer{Location: loc, Styled: !a.noColor && format == render.Text}
}
