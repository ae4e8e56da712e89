package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
)

// ConsumerMessage запускает потребителя очереди queueName и сразу возвращается.
// Не более prefetch сообщений обрабатываются одновременно; разбор исхода в handleDelivery.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))

	go func() {
		slots := make(chan struct{}, prefetch)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				slots <- struct{}{}
				go func() {
					defer func() { <-slots }()
					handleDelivery(log, d, handler)
				}()
			}
		}
	}()
	return nil
}

// handleDelivery подтверждает сообщение, если handler вернул nil. При ошибке
// свежее сообщение возвращается в очередь, а уже redelivered отбрасывается,
// чтобы битое сообщение не крутилось бесконечно.
func handleDelivery(log *slog.Logger, d amqp.Delivery, handler func([]byte) error) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !d.Redelivered
	log.Error("failed to handle message", sl.Err(err), slog.Bool("requeue", requeue))
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
