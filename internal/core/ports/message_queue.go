package ports

import (
	"context"

	"github.com/GoArmGo/VideoTube/internal/messaging/payloads"
)

// ViewEventPublisher публикует события просмотра видео.
// Используется композитором, когда побочные записи вынесены в воркер.
type ViewEventPublisher interface {
	PublishViewEvent(ctx context.Context, payload payloads.VideoViewPayload) error
}

// ViewEventConsumer потребляет события просмотра в режиме воркера.
type ViewEventConsumer interface {
	// StartConsumingViewEvents слушает очередь и вызывает handler для каждого сообщения
	StartConsumingViewEvents(ctx context.Context, handler func(context.Context, payloads.VideoViewPayload) error) error
}
