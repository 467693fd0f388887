package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/floworx/floworx/engine/infra/server"
	"github.com/floworx/floworx/pkg/config"
	"github.com/floworx/floworx/pkg/logger"
	"github.com/floworx/floworx/pkg/version"
)

const productionEnvironment = "production"

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the client configuration HTTP API",
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}
	cmd.Flags().String("host", "", "Host interface to bind")
	cmd.Flags().Int("port", 0, "Port to listen on")
	cmd.Flags().Bool("metrics", true, "Expose Prometheus metrics")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := config.FromContext(ctx)
	if cfg.Runtime.Environment == productionEnvironment {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.FromContext(ctx).Info(
		"Starting floworx",
		"version", version.Version,
		"commit", version.CommitHash,
		"environment", cfg.Runtime.Environment,
		"store_driver", cfg.Store.Driver,
	)
	return srv.Run(ctx)
}
