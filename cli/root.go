package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/floworx/floworx/pkg/config"
	"github.com/floworx/floworx/pkg/logger"
	"github.com/floworx/floworx/pkg/version"
)

const (
	flagConfig  = "config"
	flagEnvFile = "env-file"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "floworx",
		Short:         "Floworx client configuration service",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String(flagConfig, "floworx.yaml", "Path to the YAML configuration file")
	pf.String(flagEnvFile, ".env", "Path to a .env file loaded before configuration")
	pf.String("store", "", "Store driver: memory, postgres or redis")
	pf.String("db-conn-string", "", "PostgreSQL connection string")
	pf.Bool("db-auto-migrate", true, "Apply migrations when opening the postgres store")
	pf.String("redis-addr", "", "Redis address (host:port)")
	pf.String("redis-url", "", "Redis URL")
	pf.String("log-level", "", "Log level: debug, info, warn, error, disabled")
	pf.Bool("log-json", false, "Emit JSON logs")
	pf.Bool("log-source", false, "Include source locations in logs")

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		ConfigCmd(),
	)
	return root
}

// SetupGlobalConfig loads the env file, resolves configuration from defaults,
// YAML, environment and flags, and attaches config and logger to the command
// context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(
		ctx,
		config.NewYAMLProvider(configFile),
		config.NewEnvProvider(),
		config.NewCLIProvider(extractCLIFlags(cmd)),
	)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.Init(&logger.Config{
		Level:      logger.ParseLevel(cfg.Runtime.LogLevel),
		Output:     cmd.ErrOrStderr(),
		JSON:       cfg.Runtime.LogJSON,
		AddSource:  cfg.Runtime.LogSource,
		TimeFormat: time.TimeOnly,
	})
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)
	cmd.SetContext(ctx)
	return nil
}
