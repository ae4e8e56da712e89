// Package sender собирает воркер приветственных писем: читает события
// о новых заявках из RabbitMQ и отправляет письма через SMTP.
package sender

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
	senderservice "github.com/magabrotheeeer/waitlist/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQURL == "" {
		return nil, errors.New("sender: RABBITMQ_URL is required")
	}
	if cfg.SMTPHost == "" {
		return nil, errors.New("sender: SMTP_HOST is required")
	}

	conn, err := rabbitmq.Connect(ctx, logger, cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetWaitlistQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(cfg.SMTP, logger),
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueWelcome, a.senderService.SendWelcome)
	if err != nil {
		a.logger.Error("failed to start welcome consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("welcome sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
