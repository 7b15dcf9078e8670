package cli

import (
	"fmt"

	"github.com/ngmaloney/tidecast/internal/geocoding"
	"github.com/ngmaloney/tidecast/internal/ports"
	"github.com/spf13/cobra"
)

func (a *app) portService() *ports.Service {
	return ports.NewService(a.settings.DBPath, geocoding.NewGeocoder(a.settings.GeocoderURL))
}

func newPortCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "port",
		Short: "Manage named places bound to their nearest station",
		Long: `A port is a place name you choose, bound to the tide station nearest to
a geocoded location. Port names are accepted wherever a station id is.`,
	}

	var radius float64
	add := &cobra.Command{
		Use:     "add <name> <location>",
		Short:   "Save a port",
		Example: `  tidecast port add home "Chatham, MA"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := a.portService().CreatePort(cmd.Context(), args[0], args[1], radius)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: station %s, %.1f mi away\n", port.Name, port.StationID, port.Distance)
			return nil
		},
	}
	add.Flags().Float64Var(&radius, "radius", ports.DefaultRadius, "search radius in miles")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.portService().ListPorts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No ports")
				return nil
			}
			for _, p := range list {
				fmt.Fprintf(out, "%-16s %-10s %s\n", p.Name, p.StationID, p.Location)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a saved port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.portService().DeletePort(args[0])
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}
