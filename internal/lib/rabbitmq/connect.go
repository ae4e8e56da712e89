package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
)

// prefetch ограничивает число неподтверждённых сообщений на канал.
const prefetch = 10

// Connect подключается к брокеру по cfg.RabbitMQURL. Неудачная попытка повторяется
// до cfg.RabbitMQMaxRetries раз с паузой cfg.RabbitMQRetryDelay; ожидание прерывается ctx.
func Connect(ctx context.Context, log *slog.Logger, cfg config.RabbitMQ) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	attempts := max(cfg.RabbitMQMaxRetries, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		log.Warn("rabbitmq is not reachable, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_in", cfg.RabbitMQRetryDelay),
			sl.Err(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w (last dial error: %v)", op, ctx.Err(), lastErr)
		case <-time.After(cfg.RabbitMQRetryDelay):
		}
	}

	return nil, fmt.Errorf("%s: %d attempts: %w", op, attempts, lastErr)
}

// SetupChannel открывает канал, объявляет обменник Exchange и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			Exchange,
			false,
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
