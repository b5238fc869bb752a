package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"r2d2-service/config"
	"r2d2-service/internal/api"
	"r2d2-service/internal/cache"
	"r2d2-service/internal/captcha"
	"r2d2-service/internal/mail"
	"r2d2-service/internal/repository"
	"r2d2-service/internal/services"
	"r2d2-service/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type application struct {
	cfg        *config.Config
	log        *zap.Logger
	dbPool     *pgxpool.Pool
	redis      *redis.Client
	sweeper    *services.Sweeper
	jobManager *worker.JobManager
	server     *http.Server
}

// @title           R2D2 Service
// @version         1.0
// @description     Contact forms and throttled outbound email

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "r2d2",
		Short:        "Contact form intake and throttled email delivery",
		SilenceUsage: true,
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic sweep job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		serve,
		&cobra.Command{
			Use:   "sweep",
			Short: "Dispatch every queued email once and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSweep(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the database tables",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context())
			},
		},
	)
	// no subcommand means serve
	root.RunE = serve.RunE
	return root
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg := config.LoadConfig()
	log := setupLogger(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, log, nil
}

func runServe(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	var wg sync.WaitGroup

	cfg, log, err := loadConfig()
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Error("Startup aborted", zap.Error(err))
		return err
	}

	dbPool, redisClient, err := setupDependencies(ctx, cfg, log.Sugar())
	if err != nil {
		log.Error("Failed to setup dependencies", zap.Error(err))
		return err
	}
	defer dbPool.Close()
	defer redisClient.Close()

	app := buildApplication(ctx, cfg, log, dbPool, redisClient, &wg)

	startBackgroundJob(ctx, app)
	startServer(app, cancel)

	waitForShutdown(ctx, app, cancel, &wg)

	log.Info("Server gracefully stopped")
	return nil
}

func runSweep(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	defer func() { _ = log.Sync() }()
	if err != nil {
		return err
	}

	dbPool, redisClient, err := setupDependencies(ctx, cfg, log.Sugar())
	if err != nil {
		return err
	}
	defer dbPool.Close()
	defer redisClient.Close()

	var wg sync.WaitGroup
	app := buildApplication(ctx, cfg, log, dbPool, redisClient, &wg)

	report, err := app.sweeper.Sweep(ctx, "cli")
	if err != nil {
		return err
	}
	log.Sugar().Infow("Sweep finished",
		"attempted", report.Attempted,
		"sent", report.Sent,
		"rateLimited", report.RateLimited,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return nil
}

func runMigrate(ctx context.Context) error {
	cfg := config.LoadConfig()
	log := setupLogger(cfg.Debug)
	defer func() { _ = log.Sync() }()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	dbPool, err := repository.NewConnection(ctx, cfg.DatabaseURL, log.Sugar())
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := repository.Migrate(ctx, dbPool); err != nil {
		return err
	}
	log.Info("Schema is up to date")
	return nil
}

func setupLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return logger
}

func setupDependencies(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*pgxpool.Pool, *redis.Client, error) {
	dbPool, err := repository.NewConnection(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to establish database connection: %w", err)
	}
	if err := repository.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database connection established.")

	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to establish Redis connection: %w", err)
	}
	log.Info("Redis connection established.")

	return dbPool, redisClient, nil
}

func buildApplication(appCtx context.Context, cfg *config.Config, log *zap.Logger, dbPool *pgxpool.Pool, redisClient *redis.Client, wg *sync.WaitGroup) *application {
	sugar := log.Sugar()

	emailRepository := repository.NewEmailRepository(dbPool)
	formRepository := repository.NewFormRepository(dbPool)
	sentCache := cache.NewSentEmailCache(redisClient)
	sweepLock := cache.NewSweepLock(redisClient, cfg.Sweep.LockTTL)

	limiter := services.NewRateLimiter(emailRepository, cfg.Throttle)
	transport := mail.NewSMTPTransport(cfg.SMTP, sugar.Named("smtp"))
	emailService := services.NewEmailService(emailRepository, sentCache, limiter, transport, cfg.SMTP, sugar.Named("email"))
	formService := services.NewFormService(formRepository, emailService, sugar.Named("forms"))
	sweeper := services.NewSweeper(emailService, emailService, sweepLock, sugar.Named("sweeper"))
	jobManager := worker.NewJobManager(sweeper, cfg.Sweep.Interval, wg, sugar.Named("job"))

	health := map[string]api.HealthCheck{
		"database": dbPool.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	apiHandler := api.NewHandler(appCtx, emailService, formService, sweeper, jobManager, health, sugar.Named("api"))
	router := api.NewRouter(apiHandler, api.RouterConfig{
		APIToken:    cfg.APIToken,
		CORSOrigins: cfg.CORSOrigins,
		Debug:       cfg.Debug,
		Captcha:     captcha.NewVerifier(cfg.Captcha, sugar.Named("captcha")),
		FormLimiter: api.NewIPRateLimiter(cfg.FormRate.PerSecond, cfg.FormRate.Burst),
	}, log)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Info("Application components built successfully.")
	return &application{
		cfg:        cfg,
		log:        log,
		dbPool:     dbPool,
		redis:      redisClient,
		sweeper:    sweeper,
		jobManager: jobManager,
		server:     server,
	}
}

func startBackgroundJob(ctx context.Context, app *application) {
	if err := app.jobManager.Start(ctx); err != nil {
		app.log.Error("Unexpected error while starting job", zap.Error(err))
		return
	}
	app.log.Info("Background job started.", zap.Duration("interval", app.cfg.Sweep.Interval))
}

func startServer(app *application, cancelApp context.CancelFunc) {
	go func() {
		app.log.Info("HTTP server listening", zap.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Error("Unexpected error while starting server", zap.Error(err))
			cancelApp()
		}
	}()
}

func waitForShutdown(ctx context.Context, app *application, cancelApp context.CancelFunc, wg *sync.WaitGroup) {
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownChan)

	select {
	case <-shutdownChan:
	case <-ctx.Done():
	}

	app.log.Info("Shutting down gracefully...")

	// wait HTTP server 15 seconds to shut down
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.log.Error("Unexpected error while shutting down server", zap.Error(err))
	}

	cancelApp()
	wg.Wait()
}
