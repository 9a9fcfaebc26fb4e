package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the CNC controller until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := app.settings
		if app.askPassword {
			pw, err := promptNETCONFPassword()
			if err != nil {
				return err
			}
			s.NETCONFPassword = pw
		}

		c, _, err := buildController(s, func(kind string, content tsn.NotificationContent) {
			cnclog.Logger.WithField("notification", kind).
				WithField("domains", len(content)).Debug("serve: notification")
		})
		if err != nil {
			return err
		}
		if err := c.Start(); err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cnclog.Logger.Info("serve: shutting down")
		c.Stop()
		c.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&app.askPassword, "ask-netconf-password", false, "prompt for the fallback NETCONF password")
	rootCmd.AddCommand(serveCmd)
}
