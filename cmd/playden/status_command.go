package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(*configFlag)
			if err != nil {
				return err
			}

			var status statusPayload
			if err := client.getJSON(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon: running at %s\n\n", client.base)
			fmt.Fprint(out, renderTable(
				[]string{"Active", "Queued", "Pending", "Processing", "Ready", "Failed", "Total"},
				[][]string{{
					strconv.Itoa(status.ActiveJobs),
					strconv.Itoa(status.QueuedJobs),
					strconv.Itoa(status.Stats.Pending),
					strconv.Itoa(status.Stats.Processing),
					strconv.Itoa(status.Stats.Ready),
					strconv.Itoa(status.Stats.Failed),
					strconv.Itoa(status.Stats.Total),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintln(out)
			return nil
		},
	}
}
