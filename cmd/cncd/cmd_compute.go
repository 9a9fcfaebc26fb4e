package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ieee8021/tsn-cnc/internal/northbound"
	"github.com/ieee8021/tsn-cnc/pkg/cli"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

var computeFlags struct {
	cucID   string
	kind    string
	streams []string
	timeout time.Duration
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Run one compute pipeline against the local controller and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(computeFlags.kind)
		if err != nil {
			return err
		}

		done := make(chan struct{})
		c, north, err := buildController(app.settings, func(k string, content tsn.NotificationContent) {
			printNotification(k, content)
			if k == "ConfigureStreamsCompleted" {
				close(done)
			}
		})
		if err != nil {
			return err
		}
		if err := c.Start(); err != nil {
			return err
		}
		defer func() {
			c.Stop()
			c.Wait()
		}()

		var streamList []tsn.StreamID
		for _, s := range computeFlags.streams {
			streamList = append(streamList, tsn.StreamID(s))
		}
		req := tsn.ComputationType{
			Kind: kind,
			Domains: []tsn.RequestDomain{{
				DomainID: c.DomainID(),
				Cucs:     []tsn.RequestCuc{{CucID: tsn.CucID(computeFlags.cucID), StreamList: streamList}},
			}},
		}
		if res := north.ComputeStreams(req); res.Kind != northbound.ResultSuccess {
			return fmt.Errorf("compute_streams: %s", res)
		}

		select {
		case <-done:
			return nil
		case <-time.After(computeFlags.timeout):
			return fmt.Errorf("timed out after %s waiting for configure completion", computeFlags.timeout)
		}
	},
}

func parseKind(s string) (tsn.ComputationKind, error) {
	switch s {
	case "all":
		return tsn.ComputationAll, nil
	case "planned":
		return tsn.ComputationPlannedAndModified, nil
	case "list":
		return tsn.ComputationList, nil
	default:
		return 0, fmt.Errorf("unknown computation kind %q (want all, planned, or list)", s)
	}
}

func printNotification(kind string, content tsn.NotificationContent) {
	fmt.Println(cli.Bold(kind))
	t := cli.NewTable("DOMAIN", "CUC", "STREAM", "RESULT")
	for _, d := range content {
		for _, c := range d.Cucs {
			for _, s := range c.Streams {
				result := cli.Green("ok")
				if s.FailureCode != 0 {
					result = cli.Red(fmt.Sprintf("failed (%d)", s.FailureCode))
				}
				t.Row(string(d.DomainID), string(c.CucID), string(s.StreamID), result)
			}
		}
	}
	t.Flush()
}

func init() {
	computeCmd.Flags().StringVar(&computeFlags.cucID, "cuc", "", "CUC whose streams to compute (required)")
	computeCmd.Flags().StringVar(&computeFlags.kind, "kind", "all", "computation kind: all, planned, or list")
	computeCmd.Flags().StringSliceVar(&computeFlags.streams, "stream", nil, "restrict to specific stream ids")
	computeCmd.Flags().DurationVar(&computeFlags.timeout, "timeout", 5*time.Minute, "max wait for the pipeline to finish")
	computeCmd.MarkFlagRequired("cuc")
	rootCmd.AddCommand(computeCmd)
}
