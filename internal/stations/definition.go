package stations

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/tides"
)

// Definition is a station as it is stored and imported. Reference stations
// carry their own constituents; subordinate stations name a Reference and
// carry Offsets instead.
type Definition struct {
	ID           string
	Name         string
	Timezone     string
	Latitude     *float64
	Longitude    *float64
	Units        string
	Datum        float64
	MarkLevel    *float64
	Constituents []harmonics.Constituent
	Reference    string
	Offsets      *tides.Offsets
}

// IsSubordinate reports whether the definition borrows a reference model.
func (d *Definition) IsSubordinate() bool { return d.Reference != "" }

// Validate checks the fields a store row cannot do without.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("station without id")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("station %s: missing name", d.ID)
	}
	if (d.Latitude == nil) != (d.Longitude == nil) {
		return fmt.Errorf("station %s: latitude and longitude must be given together", d.ID)
	}
	if d.IsSubordinate() {
		if d.Reference == d.ID {
			return fmt.Errorf("station %s: references itself", d.ID)
		}
		return nil
	}
	if _, err := harmonics.ParseUnits(d.Units); err != nil {
		return fmt.Errorf("station %s: %w", d.ID, err)
	}
	if len(d.Constituents) == 0 {
		return fmt.Errorf("station %s: no constituents and no reference station", d.ID)
	}
	return nil
}

// Station builds the prediction station. ref must be the definition named by
// Reference for subordinate stations and is ignored otherwise.
func (d *Definition) Station(ref *Definition) (*tides.Station, error) {
	src := d
	if d.IsSubordinate() {
		if ref == nil || ref.ID != d.Reference {
			return nil, fmt.Errorf("station %s: reference station %s not supplied", d.ID, d.Reference)
		}
		if ref.IsSubordinate() {
			return nil, fmt.Errorf("station %s: reference station %s is itself subordinate", d.ID, ref.ID)
		}
		src = ref
	}

	units, err := harmonics.ParseUnits(src.Units)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", d.ID, err)
	}
	model, err := harmonics.New(src.Constituents, src.Datum, units)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", d.ID, err)
	}

	st := &tides.Station{
		ID:        d.ID,
		Name:      d.Name,
		Model:     model,
		MarkLevel: d.MarkLevel,
		Timezone:  d.Timezone,
	}
	if d.Timezone == "" {
		st.Timezone = src.Timezone
	}
	if d.IsSubordinate() {
		offsets := tides.Offsets{}
		if d.Offsets != nil {
			offsets = *d.Offsets
		}
		st.Offsets = &offsets
	}
	if d.Latitude != nil && d.Longitude != nil {
		st.Coordinates = &models.Coordinates{Latitude: *d.Latitude, Longitude: *d.Longitude}
	}
	return st, nil
}
