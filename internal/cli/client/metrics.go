package client

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

// SearchMetricsCmd creates the search-metrics command.
func SearchMetricsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search-metrics",
		Short: "Show recent search analytics",
		Long:  "Lists searches recorded in the last 24 hours, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api := NewAPIClientWithCmd(cmd)

			var resp struct {
				Entries []domain.AnalyticsEntry `json:"entries"`
				Count   int                     `json:"count"`
			}
			if err := api.GetData(cmd.Context(), "/search/metrics", nil, &resp); err != nil {
				return fmt.Errorf("failed to fetch search metrics: %w", err)
			}

			entries := resp.Entries
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if outputJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No searches recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tQUERY\tRESULTS\tDURATION")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%dms\n",
					e.Timestamp.Local().Format(time.DateTime), e.Query, e.ResultCount, e.ExecutionTimeMs)
			}
			tw.Flush()
			fmt.Fprintf(out, "\n%d searches\n", resp.Count)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries")

	return cmd
}
