package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ieee8021/tsn-cnc/internal/northbound"
	"github.com/ieee8021/tsn-cnc/pkg/cli"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "Inspect and mutate a CUC's streams",
}

var streamsListCmd = &cobra.Command{
	Use:   "list <cuc-id>",
	Short: "List a CUC's streams and their statuses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, north, err := buildController(app.settings, nil)
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

		res := north.GetStreams(tsn.CucID(args[0]))
		if res.Kind != northbound.ResultDomain {
			return fmt.Errorf("get_streams: %s", res)
		}

		t := cli.NewTable("STREAM", "STATUS", "LISTENERS", "LATENCY")
		for _, cuc := range res.Domain.Cucs {
			for _, s := range cuc.Streams {
				t.Row(
					string(s.StreamID),
					s.Status.String(),
					fmt.Sprintf("%d", len(s.Listeners)),
					fmt.Sprintf("%d", s.Talker.GroupStatusTalkerListener.AccumulatedLatency),
				)
			}
		}
		t.Flush()
		return nil
	},
}

var streamsRemoveCmd = &cobra.Command{
	Use:   "remove <cuc-id> <stream-id>...",
	Short: "Remove streams from a CUC",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, north, err := buildController(app.settings, nil)
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

		ids := make([]tsn.StreamID, 0, len(args)-1)
		for _, a := range args[1:] {
			ids = append(ids, tsn.StreamID(a))
		}
		res := north.RemoveStreams(tsn.CucID(args[0]), ids)
		fmt.Println(res)
		return nil
	},
}

var streamsSetCmd = &cobra.Command{
	Use:   "set <cuc-id> <stream-file>",
	Short: "Submit stream requests from a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := loadStreamRequests(args[1])
		if err != nil {
			return err
		}

		c, north, err := buildController(app.settings, nil)
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

		res := north.SetStreams(tsn.CucID(args[0]), reqs)
		fmt.Println(res)
		return nil
	},
}

var streamsFreeIDCmd = &cobra.Command{
	Use:   "free-id <cuc-id>",
	Short: "Request a stream id not currently in use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, north, err := buildController(app.settings, nil)
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

		fmt.Println(north.RequestFreeStreamID(c.DomainID(), tsn.CucID(args[0])))
		return nil
	},
}

func init() {
	streamsCmd.AddCommand(streamsListCmd)
	streamsCmd.AddCommand(streamsSetCmd)
	streamsCmd.AddCommand(streamsRemoveCmd)
	streamsCmd.AddCommand(streamsFreeIDCmd)
	rootCmd.AddCommand(streamsCmd)
}
