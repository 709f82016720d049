package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saifulla-23/lab-test-wizard/internal/config"
	"github.com/saifulla-23/lab-test-wizard/internal/domain/importer"
	"github.com/saifulla-23/lab-test-wizard/internal/domain/patient"
	"github.com/saifulla-23/lab-test-wizard/internal/domain/selection"
	"github.com/saifulla-23/lab-test-wizard/internal/domain/taxonomy"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/assandha"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/auth"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/cache"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/db"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/events"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/middleware"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/sandbox"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labwizard-server",
		Short: "Lab test ordering API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", applied)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(context.Background())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo categories, tests and a demo patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			_, pool, err := loadWithPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			bus := events.NewBus()
			taxSvc := taxonomy.NewService(taxonomy.NewCategoryRepoPG(pool), taxonomy.NewTestRepoPG(pool), nil, bus)
			patientSvc := patient.NewService(patient.NewRepoPG(pool), assandha.MockClient{}, bus)
			return sandbox.NewSeeder(taxSvc, patientSvc, logger).Seed(context.Background())
		},
	}
}

func loadWithPool() (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Change-notification bus; every write publishes here.
	bus := events.NewBus()

	// Optional redis list cache, invalidated through the bus.
	var store cache.Store = cache.Noop{}
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info().Msg("connected to redis")
	}
	bus.Subscribe(events.TopicTaxonomy, cache.Invalidator(store))

	// External identity portal.
	var identity assandha.Client = assandha.MockClient{}
	if !cfg.AssandhaMock {
		identity = assandha.NewHTTPClient(cfg.AssandhaBaseURL, cfg.AssandhaTimeout)
	}

	// Domain services.
	taxSvc := taxonomy.NewService(taxonomy.NewCategoryRepoPG(pool), taxonomy.NewTestRepoPG(pool), store, bus)
	patientSvc := patient.NewService(patient.NewRepoPG(pool), identity, bus)
	selectionSvc := selection.NewService(selection.NewRepoPG(pool), taxSvc, patientSvc, bus)
	imp := importer.New(taxSvc, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"version":  "0.1.0",
			"database": db.CheckHealth(c.Request().Context(), pool),
		})
	})

	api := e.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	api.Use(auth.Middleware(cfg.AuthSecret, cfg.IsDev()))

	taxonomy.NewHandler(taxSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	selection.NewHandler(selectionSvc).RegisterRoutes(api)
	importer.NewHandler(imp).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
