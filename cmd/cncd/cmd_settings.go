package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ieee8021/tsn-cnc/pkg/cli"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect the controller's persistent settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings (defaults applied)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := app.settings
		t := cli.NewTable("SETTING", "VALUE")
		t.Row("domain_id", s.GetDomainID())
		t.Row("storage_dir", s.GetStorageDir())
		t.Row("topology_file", s.TopologyFile)
		t.Row("redis_addr", s.RedisAddr)
		t.Row("netconf_user", s.NETCONFUser)
		t.Row("netconf_port", fmt.Sprintf("%d", s.GetNETCONFPort()))
		t.Row("compute_queue_depth", fmt.Sprintf("%d", s.GetComputeQueueDepth()))
		t.Row("log_level", s.GetLogLevel())
		t.Row("audit_log_path", s.GetAuditLogPath())
		t.Flush()
		return nil
	},
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with current effective values",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := app.settings
		s.DomainID = s.GetDomainID()
		s.StorageDir = s.GetStorageDir()
		s.NETCONFPort = s.GetNETCONFPort()
		s.ComputeQueueDepth = s.GetComputeQueueDepth()
		s.LogLevel = s.GetLogLevel()
		if app.settingsPath != "" {
			return s.SaveTo(app.settingsPath)
		}
		return s.Save()
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	rootCmd.AddCommand(settingsCmd)
}
