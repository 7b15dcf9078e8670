package noaa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/ngmaloney/tidecast/internal/tides"
)

// zoneNames maps the CO-OPS standard-time abbreviations to IANA zones.
var zoneNames = map[string]string{
	"AST":  "America/Puerto_Rico",
	"EST":  "America/New_York",
	"CST":  "America/Chicago",
	"MST":  "America/Denver",
	"PST":  "America/Los_Angeles",
	"AKST": "America/Anchorage",
	"HST":  "Pacific/Honolulu",
	"SST":  "Pacific/Pago_Pago",
	"CHST": "Pacific/Guam",
	"GMT":  "UTC",
}

// zoneName resolves a station zone, falling back to a fixed offset zone
// when the abbreviation is not one of the US zones.
func zoneName(abbr string, hoursEast int) string {
	if name, ok := zoneNames[strings.ToUpper(abbr)]; ok {
		return name
	}
	switch {
	case hoursEast == 0:
		return "UTC"
	case hoursEast < 0:
		return fmt.Sprintf("Etc/GMT+%d", -hoursEast)
	default:
		return fmt.Sprintf("Etc/GMT-%d", hoursEast)
	}
}

// GetStation retrieves one station. Reference stations come back with
// their constituents and the mean sea level above MLLW as datum;
// subordinate stations come back with their reference id and offsets.
func (c *Client) GetStation(ctx context.Context, stationID string) (*stations.Definition, error) {
	var meta stationsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/stations/%s.json", c.metadataURL, stationID), &meta); err != nil {
		return nil, fmt.Errorf("fetching station %s: %w", stationID, err)
	}
	if len(meta.Stations) == 0 {
		return nil, fmt.Errorf("station %s: %w", stationID, stations.ErrNotFound)
	}
	s := meta.Stations[0]

	name := s.Name
	if s.State != "" {
		name = fmt.Sprintf("%s, %s", s.Name, s.State)
	}
	lat, lon := s.Lat, s.Lng
	def := &stations.Definition{
		ID:        s.ID,
		Name:      name,
		Timezone:  zoneName(s.Timezone, s.TimezoneCorr),
		Latitude:  &lat,
		Longitude: &lon,
	}

	if s.Type == "S" {
		if err := c.addOffsets(ctx, def); err != nil {
			return nil, err
		}
		return def, nil
	}
	if err := c.addHarmonics(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (c *Client) addHarmonics(ctx context.Context, def *stations.Definition) error {
	var hc harconResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/stations/%s/harcon.json?units=english", c.metadataURL, def.ID), &hc); err != nil {
		return fmt.Errorf("fetching constituents of %s: %w", def.ID, err)
	}
	if len(hc.Constituents) == 0 {
		return fmt.Errorf("station %s publishes no harmonic constituents", def.ID)
	}

	units := hc.Units
	if _, err := harmonics.ParseUnits(units); err != nil {
		units = "ft"
	}
	def.Units = units
	for _, k := range hc.Constituents {
		if k.Amplitude == 0 {
			continue
		}
		def.Constituents = append(def.Constituents, harmonics.Constituent{
			Name:      k.Name,
			Speed:     k.Speed,
			Amplitude: k.Amplitude,
			Phase:     k.PhaseGMT,
		})
	}

	var dr datumsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/stations/%s/datums.json?units=english", c.metadataURL, def.ID), &dr); err != nil {
		return fmt.Errorf("fetching datums of %s: %w", def.ID, err)
	}
	def.Datum = dr.meanSeaLevel()
	return nil
}

func (c *Client) addOffsets(ctx context.Context, def *stations.Definition) error {
	var or offsetsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/stations/%s/tidepredoffsets.json", c.metadataURL, def.ID), &or); err != nil {
		return fmt.Errorf("fetching offsets of %s: %w", def.ID, err)
	}
	if or.RefStationID == "" {
		return fmt.Errorf("station %s has no reference station", def.ID)
	}
	def.Reference = or.RefStationID
	def.Offsets = or.offsets()
	return nil
}

// Internal types for the CO-OPS metadata API

type stationsResponse struct {
	Stations []struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		State        string  `json:"state"`
		Lat          float64 `json:"lat"`
		Lng          float64 `json:"lng"`
		Timezone     string  `json:"timezone"`
		TimezoneCorr int     `json:"timezonecorr"`
		Type         string  `json:"type"` // "R" reference, "S" subordinate
	} `json:"stations"`
}

type harconResponse struct {
	Units        string `json:"units"`
	Constituents []struct {
		Number    int     `json:"number"`
		Name      string  `json:"name"`
		Amplitude float64 `json:"amplitude"`
		PhaseGMT  float64 `json:"phase_GMT"`
		Speed     float64 `json:"speed"`
	} `json:"HarmonicConstituents"`
}

type datumsResponse struct {
	Datums []struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"datums"`
}

// meanSeaLevel returns MSL above MLLW, or 0 when either is unpublished.
func (d datumsResponse) meanSeaLevel() float64 {
	values := make(map[string]float64, len(d.Datums))
	for _, datum := range d.Datums {
		values[datum.Name] = datum.Value
	}
	msl, okMSL := values["MSL"]
	mllw, okMLLW := values["MLLW"]
	if !okMSL || !okMLLW {
		return 0
	}
	return msl - mllw
}

type offsetsResponse struct {
	RefStationID         string  `json:"refStationId"`
	HeightOffsetHighTide float64 `json:"heightOffsetHighTide"`
	HeightOffsetLowTide  float64 `json:"heightOffsetLowTide"`
	TimeOffsetHighTide   float64 `json:"timeOffsetHighTide"` // minutes
	TimeOffsetLowTide    float64 `json:"timeOffsetLowTide"`  // minutes
	HeightAdjustedType   string  `json:"heightAdjustedType"` // "R" ratio, "F" fixed
}

func (o offsetsResponse) offsets() *tides.Offsets {
	off := &tides.Offsets{
		MaxTimeAdd:       minutes(o.TimeOffsetHighTide),
		MinTimeAdd:       minutes(o.TimeOffsetLowTide),
		MaxLevelMultiply: 1,
		MinLevelMultiply: 1,
	}
	if o.HeightAdjustedType == "F" {
		off.MaxLevelAdd = o.HeightOffsetHighTide
		off.MinLevelAdd = o.HeightOffsetLowTide
	} else {
		off.MaxLevelMultiply = o.HeightOffsetHighTide
		off.MinLevelMultiply = o.HeightOffsetLowTide
	}
	return off
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute)).Round(time.Second)
}
