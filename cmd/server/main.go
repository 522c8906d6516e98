package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"task-service/internal/api"
	"task-service/internal/config"
	"task-service/internal/events"
	"task-service/internal/jwt"
	"task-service/internal/logging"
	"task-service/internal/repository"
	"task-service/internal/repository/memory"
	"task-service/internal/s3"
	"task-service/internal/service"
	"task-service/internal/tracing"
	_ "task-service/migrations"
)

type storage struct {
	users   repository.UserRepository
	tokens  repository.TokenRepository
	tasks   repository.TaskRepository
	avatars repository.AvatarRepository
}

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(api.ServiceName, cfg.LogLevel)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg.DB)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracerProvider(ctx, api.ServiceName, cfg.OtelEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("Error shutting down tracer provider", "error", err)
		}
	}()

	store, closeStore := openStorage(cfg)
	defer closeStore()

	if cfg.AvatarStorage == config.StorageS3 {
		avatarStore, err := s3.NewAvatarStore(ctx, s3.Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 avatar store: %v", err)
		}
		store.avatars = avatarStore
		slog.Info("Avatars stored in S3", "bucket", cfg.S3.Bucket)
	}

	notifier, closeNotifier := connectNotifier(cfg.NatsURL)
	defer closeNotifier()

	signer := jwt.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL)

	services := api.Services{
		Auth:    service.NewAuthService(store.users, store.tokens, signer, notifier),
		Users:   service.NewUserService(store.users, store.avatars, notifier),
		Tasks:   service.NewTaskService(store.tasks),
		Avatars: service.NewAvatarService(store.avatars),
	}

	app := api.NewApp(services, otelfiber.Middleware())

	if cfg.PublicDir != "" {
		app.Static("/", cfg.PublicDir)
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down HTTP server")
		if err := app.Shutdown(); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	slog.Info("Listening", "service", api.ServiceName, "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("HTTP server stopped: %v", err)
	}
}

func openStorage(cfg config.Server) (storage, func()) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		mem := memory.NewStore()
		return storage{
			users:   mem.Users(),
			tokens:  mem.Tokens(),
			tasks:   mem.Tasks(),
			avatars: mem.Avatars(),
		}, func() {}
	}

	db := connectDB(cfg.DB)
	return storage{
		users:   repository.NewPostgresUserRepository(db),
		tokens:  repository.NewPostgresTokenRepository(db),
		tasks:   repository.NewPostgresTaskRepository(db),
		avatars: repository.NewPostgresAvatarRepository(db),
	}, func() { db.Close() }
}

func connectDB(cfg config.DBConfig) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.URL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	slog.Info("Successfully connected to the database")
	return db
}

// connectNotifier returns a NoopNotifier when NATS is not configured or not
// reachable at startup.
func connectNotifier(url string) (service.Notifier, func()) {
	if url == "" {
		slog.Warn("NATS_URL is empty, account emails are disabled")
		return events.NoopNotifier{}, func() {}
	}

	nc, err := nats.Connect(url, nats.Name(api.ServiceName), nats.MaxReconnects(-1))
	if err != nil {
		slog.Warn("Failed to connect to NATS, account emails are disabled", "error", err)
		return events.NoopNotifier{}, func() {}
	}
	slog.Info("Successfully connected to NATS")

	return events.NewNatsPublisher(nc), func() {
		if err := nc.Drain(); err != nil {
			slog.Error("Failed to drain NATS connection", "error", err)
		}
	}
}

func handleMigrations(cfg config.DBConfig) {
	slog.Info("Running database migrations")

	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	slog.Info("Migrations applied successfully")
}
