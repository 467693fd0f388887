package cli

import (
	"github.com/spf13/cobra"

	"github.com/floworx/floworx/engine/infra/postgres"
	"github.com/floworx/floworx/pkg/config"
)

// MigrateCmd applies, rolls back or reports the embedded Postgres schema.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the PostgreSQL schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(postgres.MigrateUp), string(postgres.MigrateDown), string(postgres.MigrateStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := postgres.MigrateUp
			if len(args) == 1 {
				direction = postgres.MigrationDirection(args[0])
			}
			cfg := config.FromContext(cmd.Context())
			return postgres.RunMigrations(cmd.Context(), postgres.FromAppConfig(&cfg.Database).DSN(), direction)
		},
	}
}
