// Package cli is the tidecast command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ngmaloney/tidecast/internal/config"
	"github.com/ngmaloney/tidecast/internal/database"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfgFile string
	verbose bool
	noColor bool

	v        *viper.Viper
	settings config.Settings
	logger   *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "tidecast",
		Short: "Tide, current, sun and moon predictions from harmonic constants",
		Long: `tidecast predicts high and low water, slack water, mark crossings,
sunrise, sunset, moonrise, moonset and moon phases for stations loaded from
YAML or TOML harmonics files or fetched from NOAA CO-OPS.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initLogger(cmd.ErrOrStderr()); err != nil {
				return err
			}
			return a.initConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.tidecast.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "development logging")
	flags.BoolVar(&a.noColor, "no-color", false, "plain text output")
	flags.String("db", database.DBPath(), "station database path")
	flags.Duration("epsilon", config.Default().Epsilon, "time precision of event searches")
	flags.Duration("safety-margin", config.Default().SafetyMargin, "duplicate suppression window")
	flags.String("mask", "", "sun/moon events to leave out: p phases, S sunrise, s sunset, M moonrise, m moonset")
	flags.String("tz", "", "display timezone (default: the station's)")

	for key, flag := range map[string]string{
		"db":            "db",
		"epsilon":       "epsilon",
		"safety_margin": "safety-margin",
		"event_mask":    "mask",
		"timezone":      "tz",
	} {
		cobra.CheckErr(a.v.BindPFlag(key, flags.Lookup(flag)))
	}

	rootCmd.AddCommand(
		newImportCmd(a),
		newLocateCmd(a),
		newStationsCmd(a),
		newPredictCmd(a),
		newCalendarCmd(a),
		newTUICmd(a),
		newFetchCmd(a),
		newCompareCmd(a),
		newPortCmd(a),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) initLogger(stderr io.Writer) error {
	var (
		logger *zap.Logger
		err    error
	)
	if a.verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		fmt.Fprintf(stderr, "logger setup failed: %v\n", err)
		return err
	}
	a.logger = logger
	zap.ReplaceGlobals(logger)
	return nil
}

// initConfig reads in config file and ENV variables if set.
func (a *app) initConfig() error {
	config.SetDefaults(a.v, database.DBPath())

	if a.cfgFile != "" {
		// Use config file from the flag.
		a.v.SetConfigFile(a.cfgFile)
	} else {
		// Search config in home directory with name ".tidecast" (without extension).
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".tidecast")
	}

	a.v.SetEnvPrefix("tidecast")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv() // read in environment variables that match

	if err := a.v.ReadInConfig(); err == nil {
		a.logger.Debug("using config file", zap.String("path", a.v.ConfigFileUsed()))
	} else {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings
	return nil
}
