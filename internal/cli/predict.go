package cli

import (
	"fmt"
	"time"

	"github.com/ngmaloney/tidecast/internal/calendar"
	"github.com/ngmaloney/tidecast/internal/events"
	"github.com/ngmaloney/tidecast/internal/render"
	"github.com/spf13/cobra"
)

// windowFlags are the --from/--to/--days flags shared by prediction commands.
type windowFlags struct {
	from, to string
	days     int
}

func (w *windowFlags) register(cmd *cobra.Command, days int) {
	cmd.Flags().StringVar(&w.from, "from", "", "start, in the display timezone (default: today)")
	cmd.Flags().StringVar(&w.to, "to", "", "end, exclusive (default: --days after --from)")
	cmd.Flags().IntVar(&w.days, "days", days, "length of the window when --to is not given")
}

func (w *windowFlags) resolve(loc *time.Location) (time.Time, time.Time, error) {
	if w.days <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("--days must be positive")
	}
	return window(w.from, w.to, w.days, loc, time.Now())
}

func outputFormat(name string, asJSON bool) (render.Format, error) {
	if asJSON {
		return render.JSON, nil
	}
	return render.ParseFormat(name)
}

func newPredictCmd(a *app) *cobra.Command {
	var (
		win     windowFlags
		extrema bool
		known   bool
		format  string
		asJSON  bool
		raw     time.Duration
		at      string
	)
	cmd := &cobra.Command{
		Use:   "predict <station>",
		Short: "List the tide and sun/moon events of a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(format, asJSON)
			if err != nil {
				return err
			}
			p, loc, err := a.loadPredictor(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if at != "" {
				t, err := parseTime(at, loc)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %.3f %s\n", t.Format("2006-01-02 15:04 MST"), p.LevelAt(t), p.Station().Model.Units())
				return nil
			}

			start, end, err := win.resolve(loc)
			if err != nil {
				return err
			}
			if raw > 0 {
				return a.renderer(loc, f).Events(out, p.Raw(start, end, raw), f)
			}

			filter := events.AllEvents
			switch {
			case extrema:
				filter = events.MaxMinOnly
			case known:
				filter = events.KnownTideEvents
			}
			return a.renderer(loc, f).Events(out, p.Predict(start, end, filter), f)
		},
	}
	win.register(cmd, 1)
	cmd.Flags().BoolVar(&extrema, "extrema", false, "only high and low water (or max flood and ebb)")
	cmd.Flags().BoolVar(&known, "known", false, "only extrema and slacks with known offsets")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, csv or json")
	cmd.Flags().BoolVar(&asJSON, "json", false, "shorthand for --format json")
	cmd.Flags().DurationVar(&raw, "raw", 0, "print level samples at this step instead of events")
	cmd.Flags().StringVar(&at, "at", "", "print the level at one instant")
	cmd.MarkFlagsMutuallyExclusive("extrema", "known")
	return cmd
}

func newCalendarCmd(a *app) *cobra.Command {
	var (
		win    windowFlags
		plain  bool
		format string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "calendar <station>",
		Short: "Group a station's events by local day",
		Long: `Groups events by the local day they fall on. Subordinate station events are
ordered by their reference station times unless --plain is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(format, asJSON)
			if err != nil {
				return err
			}
			p, loc, err := a.loadPredictor(args[0])
			if err != nil {
				return err
			}
			start, end, err := win.resolve(loc)
			if err != nil {
				return err
			}

			pred := p.Predict(start, end, events.AllEvents)
			days := calendar.Buckets(pred.Events, calendar.LocationZone{Location: loc}, plain || f == render.CSV)
			return a.renderer(loc, f).Calendar(cmd.OutOrStdout(), pred, days, f)
		},
	}
	win.register(cmd, 7)
	cmd.Flags().BoolVar(&plain, "plain", false, "keep events in time order within each day")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, csv or json")
	cmd.Flags().BoolVar(&asJSON, "json", false, "shorthand for --format json")
	return cmd
}
