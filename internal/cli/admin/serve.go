package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/api/handlers"
	"github.com/handrades/Luppa-PLC-sub003/internal/cache"
	"github.com/handrades/Luppa-PLC-sub003/internal/database"
	"github.com/handrades/Luppa-PLC-sub003/internal/jobs"
	"github.com/handrades/Luppa-PLC-sub003/internal/metrics"
	"github.com/handrades/Luppa-PLC-sub003/internal/repository"
	"github.com/handrades/Luppa-PLC-sub003/internal/server"
	"github.com/handrades/Luppa-PLC-sub003/internal/service"
	"github.com/handrades/Luppa-PLC-sub003/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the luppa search API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides LUPPA_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsSource, "Migrations source URL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	flush := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.SentryEnvironment,
		TracesSampleRate: cfg.SentrySampleRate,
	}, log)
	defer flush()

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.Port = portFlag
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("Connected to database")

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		source, _ := cmd.Flags().GetString("migrations")
		if err := database.Migrate(cfg.DatabaseURL, source, log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	store, closeStore, err := newCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics.RegisterSearchMetrics()
	gateway := cache.NewGateway(store, cfg.CacheCooldown, metrics.SearchCacheTotal, log.Named("cache"))

	searchSvc := service.NewSearchService(
		repository.NewSearchRepository(pool),
		gateway,
		service.SearchServiceConfig{
			CacheTTL:     cfg.CacheTTL,
			AnalyticsTTL: cfg.AnalyticsTTL,
		},
		log.Named("search"),
	)
	defer searchSvc.Wait()

	var refreshWorker *jobs.Worker
	if cfg.ViewRefreshInterval > 0 {
		refreshJob := jobs.NewViewRefreshJob(searchSvc, 0, log)
		refreshWorker = jobs.NewWorker("view-refresh", refreshJob, cfg.ViewRefreshInterval, log)
		go refreshWorker.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		SearchHandler: handlers.NewSearchHandler(searchSvc),
		Logger:        log.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	if refreshWorker != nil {
		refreshWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}
