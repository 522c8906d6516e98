package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"task-service/internal/config"
	"task-service/internal/logging"
	"task-service/internal/mailer"
	"task-service/internal/worker"
)

const serviceName = "notification-worker"

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(serviceName, cfg.LogLevel)

	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			log.Fatalf("Failed to create SMTP mailer: %v", err)
		}
		m = smtp
	} else {
		slog.Warn("SMTP_HOST is empty, running in MOCK mode: emails are logged, not sent")
	}

	nc, err := nats.Connect(cfg.NatsURL, nats.Name(serviceName), nats.MaxReconnects(-1))
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Drain()

	if _, err := worker.Start(nc, m); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	slog.Info("Notification worker started, waiting for events")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down notification worker")
}
