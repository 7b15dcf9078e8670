package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/ngmaloney/tidecast/internal/harmonicsfile"
	"github.com/ngmaloney/tidecast/internal/locations"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml|file.toml>...",
		Short: "Load station definitions into the station database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var defs []stations.Definition
			for _, path := range args {
				d, err := harmonicsfile.Load(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				defs = append(defs, d...)
			}

			return a.provision(cmd.ErrOrStderr(), defs)
		},
	}
}

// provision saves defs, printing progress to w.
func (a *app) provision(w io.Writer, defs []stations.Definition) error {
	progress := make(chan string)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range progress {
			fmt.Fprintln(w, msg)
		}
	}()
	err := stations.ProvisionStationsDatabase(a.settings.DBPath, defs, progress)
	close(progress)
	wg.Wait()
	return err
}

func newLocateCmd(a *app) *cobra.Command {
	var idField string
	cmd := &cobra.Command{
		Use:   "locate <file.shp|file.zip|url>",
		Short: "Set station coordinates from a point shapefile",
		Long: `Reads a point shapefile whose attribute table names the station of each
point and stores the point as that station's location. Stations with a
location get sunrise, sunset, moonrise and moonset events.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := locations.Import(a.settings.DBPath, args[0], idField, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d stations\n", res.Updated)
			if len(res.Unknown) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d unknown stations\n", len(res.Unknown))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&idField, "id-field", "", "attribute column holding the station id (default: first column)")
	return cmd
}
