package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/tidecast/internal/ui"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	var (
		from  string
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "tui <station>",
		Short: "Browse a station's events in a month calendar",
		Long: `Opens an interactive month calendar for one station.

Navigation:
  ←/→ h/l   previous/next day
  ↑/↓ k/j   previous/next week
  p/n       previous/next month
  t         today
  ?         all keys
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, loc, err := a.loadPredictor(args[0])
			if err != nil {
				return err
			}
			start := time.Now()
			if from != "" {
				if start, err = parseTime(from, loc); err != nil {
					return err
				}
			}

			prog := tea.NewProgram(ui.NewModel(p, loc, start, plain), tea.WithAltScreen())
			_, err = prog.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "open on the month of this date (default: today)")
	cmd.Flags().BoolVar(&plain, "plain", false, "keep events in time order within each day")
	return cmd
}
