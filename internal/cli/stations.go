package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ngmaloney/tidecast/internal/geocoding"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStationsCmd(a *app) *cobra.Command {
	var (
		near   string
		radius float64
	)
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List stored stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				list []stations.StationInfo
				err  error
			)
			if near != "" {
				lat, lon, perr := a.resolvePlace(cmd.Context(), near)
				if perr != nil {
					return perr
				}
				list, err = stations.FindNearbyStations(a.settings.DBPath, lat, lon, radius)
			} else {
				list, err = stations.List(a.settings.DBPath)
			}
			if errors.Is(err, stations.ErrNotFound) || (err == nil && len(list) == 0) {
				if serr := a.emptyStoreError(err); serr != nil {
					return serr
				}
			}
			if err != nil {
				return err
			}
			writeStations(cmd.OutOrStdout(), list, near != "")
			return nil
		},
	}
	cmd.Flags().StringVar(&near, "near", "", `only stations near "lat,lon", a postal code or a place name`)
	cmd.Flags().Float64Var(&radius, "radius", 25, "search radius in miles for --near")
	return cmd
}

var latLonPattern = regexp.MustCompile(`^\s*[-+]?[\d.]+\s*,\s*[-+]?[\d.]+\s*$`)

// resolvePlace reads s as lat,lon when it looks like a coordinate pair and
// geocodes it otherwise.
func (a *app) resolvePlace(ctx context.Context, s string) (float64, float64, error) {
	if latLonPattern.MatchString(s) {
		return parseLatLon(s)
	}
	loc, err := geocoding.NewGeocoder(a.settings.GeocoderURL).Geocode(ctx, s)
	if err != nil {
		return 0, 0, fmt.Errorf("locating %q: %w", s, err)
	}
	a.logger.Debug("geocoded place", zap.String("query", s), zap.String("name", loc.Name),
		zap.Float64("lat", loc.Latitude), zap.Float64("lon", loc.Longitude))
	return loc.Latitude, loc.Longitude, nil
}

func parseLatLon(s string) (float64, float64, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --near %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude in %q", s)
	}
	return lat, lon, nil
}

func writeStations(w io.Writer, list []stations.StationInfo, withDistance bool) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No stations")
		return
	}
	for _, s := range list {
		where := "no location"
		if s.Latitude != nil && s.Longitude != nil {
			where = fmt.Sprintf("%.4f, %.4f", *s.Latitude, *s.Longitude)
		}
		line := fmt.Sprintf("%-10s %-32s %-3s %s", s.ID, s.Name, s.Units, where)
		if s.Reference != "" {
			line += fmt.Sprintf("  (subordinate to %s)", s.Reference)
		}
		if withDistance {
			line += fmt.Sprintf("  %.1f mi", s.Distance)
		}
		fmt.Fprintln(w, line)
	}
}
