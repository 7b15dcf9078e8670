package cli

import (
	"fmt"
	"time"

	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/noaa"
	"github.com/ngmaloney/tidecast/internal/render"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) noaaClient() *noaa.Client {
	return noaa.NewClient(a.settings.NOAA.DataURL, a.settings.NOAA.MetadataURL)
}

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <station id>...",
		Short: "Download station harmonics from NOAA CO-OPS",
		Long: `Downloads the harmonic constituents of NOAA reference stations, or the
offsets of subordinate stations together with their reference station, and
stores them in the station database.

NOAA publishes constituents without yearly node factors, so fetched stations
predict with a node factor of 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.noaaClient()
			fetched := make(map[string]bool)
			var defs []stations.Definition

			queue := append([]string(nil), args...)
			for len(queue) > 0 {
				id := queue[0]
				queue = queue[1:]
				if fetched[id] {
					continue
				}
				def, err := client.GetStation(cmd.Context(), id)
				if err != nil {
					return err
				}
				fetched[id] = true
				a.logger.Debug("fetched station", zap.String("station", id), zap.Bool("subordinate", def.IsSubordinate()))
				fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s %s\n", def.ID, def.Name)
				defs = append(defs, *def)
				if def.IsSubordinate() {
					queue = append(queue, def.Reference)
				}
			}
			return a.provision(cmd.ErrOrStderr(), defs)
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	var win windowFlags
	cmd := &cobra.Command{
		Use:   "compare <station>",
		Short: "Compare predicted high and low water with NOAA's published tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, loc, err := a.loadPredictor(args[0])
			if err != nil {
				return err
			}
			units := p.Station().Model.Units()
			if units.IsCurrent() {
				return fmt.Errorf("station %s predicts currents; NOAA publishes high/low tables for tide stations only", args[0])
			}
			start, end, err := win.resolve(loc)
			if err != nil {
				return err
			}

			published, err := a.noaaClient().GetHighLows(cmd.Context(), args[0], start, end, units == harmonics.Meters)
			if err != nil {
				return err
			}
			pred := p.Predict(start, end, events.MaxMinOnly)
			matches := noaa.Compare(published, pred.Events)

			out := cmd.OutOrStdout()
			for _, m := range matches {
				line := fmt.Sprintf("%s  %-9s  %s", m.Published.Time.In(loc).Format("2006-01-02 15:04 MST"),
					m.Published.Description(), render.FormatLevel(m.Published, pred.Units))
				if m.Predicted == nil {
					fmt.Fprintf(out, "%s  no prediction\n", line)
					continue
				}
				fmt.Fprintf(out, "%s  %8s  %+.2f\n", line, m.TimeDiff.Round(time.Second), m.LevelDiff)
			}

			s := noaa.Summarize(matches)
			fmt.Fprintf(out, "Matched %d of %d; time difference max %s, mean %s; level difference max %.2f %s\n",
				s.Matched, len(matches), s.MaxTimeDiff.Round(time.Second), s.MeanTimeDiff.Round(time.Second), s.MaxLevelDiff, pred.Units)
			return nil
		},
	}
	win.register(cmd, 2)
	return cmd
}
