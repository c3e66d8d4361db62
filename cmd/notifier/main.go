package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"restaurant-booking/internal/app"
	"restaurant-booking/internal/core/config"
	"restaurant-booking/internal/notify"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := app.NewLogger(cfg)
	defer cleanup()

	if cfg.MQ.URL == "" {
		log.Fatal("mq.url is required for the notifier")
	}
	if cfg.SMTP.Host == "" || cfg.SMTP.From == "" {
		log.Fatal("smtp.host and smtp.from are required for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := notify.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.Queue, 8)
	if err != nil {
		log.Fatal("connect broker", zap.Error(err))
	}
	defer consumer.Close()

	w := &notify.Worker{
		Sender: &notify.SMTPMailer{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		},
		Log: log,
	}
	log.Info("notifier started",
		zap.String("exchange", cfg.MQ.Exchange),
		zap.String("queue", cfg.MQ.Queue),
	)
	if err := consumer.Run(ctx, w); err != nil {
		log.Error("notifier stopped with error", zap.Error(err))
		return
	}
	log.Info("notifier stopped")
}
