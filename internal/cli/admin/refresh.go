package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/handrades/Luppa-PLC-sub003/internal/repository"
)

// RefreshViewCmd returns the refresh-view command
func RefreshViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh-view",
		Short: "Rebuild the search view",
		Long:  "Refreshes the plc_search_view materialized view so recent catalog edits become searchable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			start := time.Now()
			if err := repository.NewSearchRepository(pool).RefreshSearchView(ctx); err != nil {
				return fmt.Errorf("failed to refresh search view: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Search view refreshed in %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().Duration("timeout", 5*time.Minute, "Maximum time to wait for the refresh")

	return cmd
}
