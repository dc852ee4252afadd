// Package cmd provides the CLI commands for lasernest.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/piwi3910/LaserNest/internal/logging"
	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/piwi3910/LaserNest/internal/project"
	"github.com/piwi3910/LaserNest/internal/report"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=...".
var version = "0.1.0"

// app holds the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	verbose  bool
	settings model.Settings
}

func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return project.DefaultConfigPath()
}

func (a *app) historyPath() string {
	if a.settings.HistoryPath != "" {
		return a.settings.HistoryPath
	}
	return project.DefaultHistoryPath()
}

func (a *app) renderer(w io.Writer) *report.Renderer {
	return report.New(w)
}

// load reads the settings file and configures logging.
func (a *app) load() error {
	s, err := project.LoadSettings(a.configPath())
	if err != nil {
		return fmt.Errorf("error loading settings: %w", err)
	}
	a.settings = s

	cfg := logging.Config{
		Level:  s.Logging.Level,
		Format: s.Logging.Format,
		Output: s.Logging.Output,
	}
	if a.verbose {
		cfg.Level = "debug"
	}
	if err := logging.Initialize(cfg); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "lasernest",
		Short: "Nest parts on sheets and estimate laser cutting costs",
		Long: `lasernest nests rectangular parts on stock sheets and prices the job:
sheet material, laser time and assist gas.

Parts come from DXF drawings or CSV/Excel manifests (name, width, height,
optional cut length and quantity).

Examples:
  lasernest estimate bracket.dxf --material ms --thickness 3 --quantity 50
  lasernest estimate parts.csv --material ss304 --thickness 1 --pdf quote.pdf
  lasernest nest panel.dxf --sheet-width 1500 --sheet-height 3000 --gcode ./nc
  lasernest materials`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "settings file, .json or .toml (default is $HOME/.lasernest/settings.json)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newEstimateCmd(a))
	rootCmd.AddCommand(newNestCmd(a))
	rootCmd.AddCommand(newMaterialsCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))
	rootCmd.AddCommand(newProfilesCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lasernest version %s\n", version)
		},
	})

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
