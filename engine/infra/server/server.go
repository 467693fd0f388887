package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	clientconfigrouter "github.com/floworx/floworx/engine/clientconfig/router"
	"github.com/floworx/floworx/engine/infra/monitoring"
	"github.com/floworx/floworx/engine/infra/server/middleware/size"
	"github.com/floworx/floworx/engine/infra/server/router"
	"github.com/floworx/floworx/pkg/config"
	"github.com/floworx/floworx/pkg/logger"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	healthCheckTimeout     = 2 * time.Second
)

type Server struct {
	cfg        *config.Config
	deps       *Dependencies
	monitoring *monitoring.Service
	router     *gin.Engine
}

// NewServer opens the configured store and builds the HTTP engine.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: configuration is required")
	}
	mon := monitoring.NewMonitoringServiceWithFallback(ctx, &cfg.Monitoring)
	if mon.IsInitialized() {
		mon.SetAsGlobal()
	}
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := NewDependencies(cfg, store, monitoring.NewPipelineMetrics(ctx, mon.Meter()))
	return newServer(ctx, cfg, deps, mon), nil
}

func newServer(ctx context.Context, cfg *config.Config, deps *Dependencies, mon *monitoring.Service) *Server {
	s := &Server{cfg: cfg, deps: deps, monitoring: mon}
	s.router = s.buildRouter(ctx)
	return s
}

func (s *Server) buildRouter(ctx context.Context) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.FromContext(ctx)))
	r.Use(s.monitoring.GinMiddleware())
	if len(s.cfg.Server.CORS.AllowedOrigins) > 0 {
		r.Use(CORSMiddleware(s.cfg.Server.CORS))
	}
	r.GET("/healthz", s.healthHandler)
	if s.monitoring.IsInitialized() {
		r.GET(s.monitoring.Path(), gin.WrapH(s.monitoring.ExporterHandler()))
	}
	api := r.Group("", size.BodySizeLimiter(s.cfg.Server.MaxBodyBytes))
	handler := clientconfigrouter.NewHandler(
		s.deps.Get,
		s.deps.Update,
		s.deps.History,
		clientconfigrouter.WithDefaultActor(s.cfg.Server.DefaultActorLabel),
	)
	clientconfigrouter.Register(api, handler)
	return r
}

// Handler exposes the gin engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("Health check failed", "error", err)
		router.RespondWithError(c, http.StatusServiceUnavailable, router.WrapServerError(
			router.ErrServiceUnavailableCode,
			"store unavailable",
			err,
		))
		return
	}
	router.RespondOK(c, gin.H{"status": "ok", "store": s.cfg.Store.Driver})
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests and
// releases the store.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port)),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", srv.Addr, "store_driver", s.cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		log.Info("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	err := g.Wait()
	s.Close(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	log.Info("Server shutdown completed successfully")
	return nil
}

// Close releases the store and flushes metrics.
func (s *Server) Close(ctx context.Context) {
	log := logger.FromContext(ctx)
	if err := s.deps.Close(); err != nil {
		log.Warn("Failed to close store", "error", err)
	}
	if err := s.monitoring.Shutdown(ctx); err != nil {
		log.Warn("Failed to shut down monitoring", "error", err)
	}
}
