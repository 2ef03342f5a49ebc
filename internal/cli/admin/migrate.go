package admin

import (
	"github.com/spf13/cobra"

	"github.com/handrades/Luppa-PLC-sub003/internal/database"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			source, _ := cmd.Flags().GetString("migrations")
			return database.Migrate(cfg.DatabaseURL, source, log)
		},
	}

	cmd.Flags().String("migrations", database.DefaultMigrationsSource, "Migrations source URL")

	return cmd
}
