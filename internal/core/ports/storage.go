package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// EntityStore — отфильтрованное чтение коллекций хранилища сущностей.
// Исполнитель конвейеров композиции работает только через этот интерфейс.
type EntityStore interface {
	pipeline.Source
}

// EdgeStore определяет атомарные переключатели рёбер.
// Каждый вызов — одна атомарная операция: удалить ребро, если оно есть, иначе создать.
type EdgeStore interface {
	ToggleLike(ctx context.Context, key domain.LikeKey) (domain.EdgeState, error)
	ToggleSubscription(ctx context.Context, key domain.SubscriptionKey) (domain.EdgeState, error)
}

// ActivityStore определяет побочные записи при просмотре видео.
type ActivityStore interface {
	IncrementViews(ctx context.Context, videoID uuid.UUID) error
	// AppendWatchHistory добавляет видео в историю; повторное добавление — no-op.
	AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error
}

// PlaylistEditor изменяет состав плейлиста.
type PlaylistEditor interface {
	// AddVideo возвращает Conflict, если видео уже в плейлисте.
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
}

// RefResolver превращает ссылку на медиа-объект в URL, пригодный для клиента.
type RefResolver interface {
	ResolveRef(ctx context.Context, ref string) (string, error)
}
