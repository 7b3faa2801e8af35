package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"healthcare-scheduling-server/internal/config"
	"healthcare-scheduling-server/internal/directory"
	"healthcare-scheduling-server/internal/logging"
	"healthcare-scheduling-server/internal/metrics"
	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/repository"
	"healthcare-scheduling-server/internal/routes"
	"healthcare-scheduling-server/internal/scheduling"
)

const serviceName = "scheduling-server"

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Appointment scheduling and lifecycle API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduling API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the MySQL tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN, LogLevel: logger.Info})
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Migrations applied successfully.")
			return nil
		},
	}
}

// loadConfig reads .env when present and validates the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(serviceName, cfg.Environment, cfg.LogLevel)

	repo, dir, err := openStorage(cfg)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StorageDriver).Msg("storage initialisation failed")
		return err
	}

	var redisClient *redis.Client
	if cfg.Directory.RedisURL != "" {
		redisClient, dir, err = cacheDirectory(cfg, dir, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := scheduling.NewService(repo, dir, log, m)
	router := routes.NewRouter(cfg, svc, log, m, reg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed")
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStorage selects the repository and doctor directory for the configured
// storage driver.
func openStorage(cfg *config.Config) (repository.Repository, directory.Directory, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		dir, err := directory.LoadFile(cfg.Directory.File)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMemoryRepository(), dir, nil
	default:
		db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return repository.NewGormRepository(db), directory.NewGormDirectory(db), nil
	}
}

// cacheDirectory puts a Redis read-through cache in front of dir. An
// unreachable Redis at startup is only reported: cache faults fall through to
// dir on every lookup.
func cacheDirectory(cfg *config.Config, dir directory.Directory, log zerolog.Logger) (*redis.Client, directory.Directory, error) {
	opts, err := redis.ParseURL(cfg.Directory.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; doctor directory will not be cached")
	}
	return client, directory.NewCachedDirectory(dir, client, cfg.Directory.CacheTTL, log), nil
}
