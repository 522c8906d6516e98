package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
)

type DBConfig struct {
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	Name     string `env:"DB_NAME"`
}

func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

type S3Config struct {
	Endpoint     string `env:"S3_ENDPOINT"`
	Region       string `env:"AWS_REGION" envDefault:"us-east-1"`
	Bucket       string `env:"S3_BUCKET_NAME"`
	AccessKey    string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE"`
}

type Server struct {
	Port          string        `env:"APP_PORT" envDefault:"8001"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	Storage       string        `env:"STORAGE" envDefault:"postgres"`
	AvatarStorage string        `env:"AVATAR_STORAGE" envDefault:"postgres"`
	JWTSecret     string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	NatsURL       string        `env:"NATS_URL"`
	OtelEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	PublicDir     string        `env:"PUBLIC_DIR"`
	DB            DBConfig
	S3            S3Config
}

type Worker struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	NatsURL      string `env:"NATS_URL,required"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Task Service <no-reply@example.com>"`
}

// LoadServer reads .env.dev when present, then the process environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := load(&cfg); err != nil {
		return cfg, err
	}

	switch cfg.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return cfg, fmt.Errorf("unsupported STORAGE %q", cfg.Storage)
	}

	switch cfg.AvatarStorage {
	case StoragePostgres, StorageS3:
	default:
		return cfg, fmt.Errorf("unsupported AVATAR_STORAGE %q", cfg.AvatarStorage)
	}

	if cfg.AvatarStorage == StorageS3 && cfg.S3.Bucket == "" {
		return cfg, fmt.Errorf("S3_BUCKET_NAME is required when AVATAR_STORAGE=s3")
	}

	return cfg, nil
}

func LoadWorker() (Worker, error) {
	var cfg Worker
	err := load(&cfg)
	return cfg, err
}

func load(target any) error {
	if err := godotenv.Load(".env.dev"); err != nil {
		slog.Debug("No .env.dev file found, reading from environment variables")
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}
