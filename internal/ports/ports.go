// Package ports keeps user-named places, each bound to its nearest tide
// station.
package ports

import (
	"context"
	"errors"

	"github.com/ngmaloney/tidecast/internal/geocoding"
)

// ErrNotFound is returned when no port has the requested name.
var ErrNotFound = errors.New("port not found")

// Geocoder resolves a place query to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Location, error)
}
