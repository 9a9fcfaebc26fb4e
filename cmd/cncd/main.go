// Cncd - TSN Centralized Network Configuration controller
//
// A daemon and CLI for the fully centralized IEEE 802.1Q configuration
// model:
//   - Accepts Stream specifications from CUCs
//   - Computes per-bridge time-aware shaper schedules
//   - Pushes Gate Control Lists to bridges over NETCONF
//   - Audit logging of all northbound operations
//
// Examples:
//
//	cncd serve                                  # Run the controller
//	cncd compute --cuc test-cuc-id              # One-shot compute of a CUC's streams
//	cncd streams list test-cuc-id               # List a CUC's streams
//	cncd streams remove test-cuc-id <stream-id> # Remove streams
//	cncd settings show
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/pkg/audit"
	"github.com/ieee8021/tsn-cnc/pkg/cncsettings"
	"github.com/ieee8021/tsn-cnc/pkg/version"
)

// App holds CLI state shared across all commands.
type App struct {
	// Option flags
	settingsPath string
	verbose      bool
	jsonLog      bool
	askPassword  bool

	// Initialized state (set in PersistentPreRunE)
	settings *cncsettings.Settings
}

var app = &App{}

var rootCmd = &cobra.Command{
	Use:           "cncd",
	Short:         "TSN centralized network configuration controller",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.init()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&app.settingsPath, "settings", "", "settings file (default ~/.cnc/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&app.jsonLog, "json-log", false, "log in JSON format")

	rootCmd.AddCommand(versionCmd)
}

// init loads settings and configures logging and audit before any
// command body runs.
func (a *App) init() error {
	path := a.settingsPath
	if path == "" {
		path = cncsettings.DefaultSettingsPath()
	}
	s, err := cncsettings.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading settings from %s: %w", path, err)
	}
	a.settings = s

	level := s.GetLogLevel()
	if a.verbose {
		level = "debug"
	}
	if err := cnclog.SetLevel(level); err != nil {
		return err
	}
	if a.jsonLog || s.LogJSON {
		cnclog.SetJSONFormat()
	}

	logger, err := audit.NewFileLogger(s.GetAuditLogPath(), audit.RotationConfig{
		MaxSize:    int64(s.GetAuditMaxSizeMB()) * 1024 * 1024,
		MaxBackups: s.GetAuditMaxBackups(),
	})
	if err != nil {
		cnclog.Logger.WithError(err).Warn("audit logging disabled")
	} else {
		audit.SetDefaultLogger(logger)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cncd %s (%s)\n", version.Version, version.GitCommit)
	},
}
