package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handrades/Luppa-PLC-sub003/internal/cli/admin"
	"github.com/handrades/Luppa-PLC-sub003/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "luppad",
		Short: "Luppa PLC catalog search daemon and CLI",
		Long: `Luppa runs the PLC catalog search API and queries it from the command line.

Environment variables:
  LUPPA_DATABASE_URL   PostgreSQL connection string (server commands)
  LUPPA_REDIS_ADDRS    Comma separated Redis addresses (optional)
  LUPPA_API_URL        API base URL for client commands (default: http://localhost:8080)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.RefreshViewCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.SuggestCmd())
	rootCmd.AddCommand(client.SearchMetricsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
