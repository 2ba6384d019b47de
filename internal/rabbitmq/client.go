package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/VideoTube/internal/config"
	"github.com/GoArmGo/VideoTube/internal/messaging/payloads"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ для событий просмотра видео.
// Реализует ports.ViewEventPublisher и ports.ViewEventConsumer.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет очередь событий.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявление очереди идемпотентно
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("rabbitmq connected", "queue", q.Name, "messages", q.Messages)
	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение RabbitMQ.
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("failed to close rabbitmq channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close rabbitmq connection: %w", err)
		}
	}
	return nil
}

// PublishViewEvent публикует событие просмотра в очередь.
func (c *Client) PublishViewEvent(ctx context.Context, payload payloads.VideoViewPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal view event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    payload.ViewedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish view event: %w", err)
	}
	c.logger.Debug("view event published", "queue", c.queue.Name, "video_id", payload.VideoID)
	return nil
}

// StartConsumingViewEvents регистрирует потребителя и обрабатывает события
// в отдельной горутине до отмены ctx.
func (c *Client) StartConsumingViewEvents(ctx context.Context, handler func(context.Context, payloads.VideoViewPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("rabbitmq delivery channel closed, stopping consumer")
					return
				}
				settle(ctx, c.logger, msg.Body, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping rabbitmq consumer")
				return
			}
		}
	}()

	return nil
}

// acknowledger — часть amqp.Delivery, нужная для подтверждения.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle декодирует и обрабатывает одно сообщение. Нечитаемые сообщения
// отбрасываются без возврата в очередь, ошибки обработки возвращают сообщение в очередь.
func settle(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, handler func(context.Context, payloads.VideoViewPayload) error) {
	payload, err := decodeViewEvent(body)
	if err != nil {
		logger.Warn("dropping malformed view event", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Warn("view event processing failed, requeueing",
			"video_id", payload.VideoID,
			"viewer_id", payload.ViewerID,
			"error", err,
		)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
}

func decodeViewEvent(body []byte) (payloads.VideoViewPayload, error) {
	var p payloads.VideoViewPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal view event: %w", err)
	}
	if p.VideoID == "" || p.ViewerID == "" {
		return p, fmt.Errorf("view event is missing video_id or viewer_id")
	}
	return p, nil
}
