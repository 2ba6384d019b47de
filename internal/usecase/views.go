package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/pagination"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// ViewComposer собирает денормализованные read-модели из нормализованных сущностей.
// Все операции только читают хранилище; единственное исключение — побочные
// записи просмотра в ComposeVideoDetail, которые делегируются ViewRecorder.
type ViewComposer interface {
	// ComposeChannelProfile возвращает профиль канала по точному (регистрозависимому) username.
	ComposeChannelProfile(ctx context.Context, username string, viewer domain.ViewerID) (*domain.ChannelProfile, error)

	// ComposeVideoDetail возвращает страницу видео. Если зритель известен,
	// после чтения увеличивается счётчик просмотров и пополняется история.
	ComposeVideoDetail(ctx context.Context, videoID uuid.UUID, viewer domain.ViewerID) (*domain.VideoDetail, error)

	// ComposeUserPlaylists возвращает плейлисты пользователя с обложкой первого видео.
	ComposeUserPlaylists(ctx context.Context, userID uuid.UUID) ([]domain.PlaylistCard, error)

	// ComposePlaylistDetail возвращает плейлист с видео в порядке плейлиста.
	ComposePlaylistDetail(ctx context.Context, playlistID uuid.UUID) (*domain.PlaylistDetail, error)

	// ComposeLikedVideosFeed возвращает понравившиеся зрителю видео, новые лайки первыми.
	ComposeLikedVideosFeed(ctx context.Context, viewer domain.ViewerID) ([]domain.LikedVideo, error)

	// ComposeSubscriberList возвращает подписчиков канала.
	ComposeSubscriberList(ctx context.Context, channelID uuid.UUID, viewer domain.ViewerID) ([]domain.SubscriberEntry, error)

	// ComposeSubscribedChannelList возвращает каналы, на которые подписан пользователь, с последним видео.
	ComposeSubscribedChannelList(ctx context.Context, subscriberID uuid.UUID) ([]domain.SubscribedChannel, error)

	// ComposeVideoFeed возвращает страницу опубликованных видео.
	ComposeVideoFeed(ctx context.Context, q domain.VideoFeedQuery) (pagination.Page[domain.VideoSummary], error)

	// ComposeVideoComments возвращает страницу комментариев к видео, новые первыми.
	ComposeVideoComments(ctx context.Context, videoID uuid.UUID, page, limit int, viewer domain.ViewerID) (pagination.Page[domain.CommentView], error)

	// ComposeChannelStats возвращает сводную статистику канала.
	ComposeChannelStats(ctx context.Context, channelID uuid.UUID) (*domain.ChannelStats, error)

	// ComposeChannelVideos возвращает все видео канала (включая неопубликованные) с лайками.
	ComposeChannelVideos(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelVideo, error)

	// ComposeUserPosts возвращает короткие записи пользователя.
	ComposeUserPosts(ctx context.Context, userID uuid.UUID, viewer domain.ViewerID) ([]domain.PostView, error)

	// ComposeWatchHistory возвращает историю просмотров зрителя в порядке добавления.
	ComposeWatchHistory(ctx context.Context, viewer domain.ViewerID) ([]domain.VideoSummary, error)
}

// RelationshipToggler переключает рёбра-отношения (лайк, подписка).
type RelationshipToggler interface {
	ToggleLike(ctx context.Context, viewer domain.ViewerID, targetType domain.TargetType, targetID uuid.UUID) (domain.ToggleResult, error)
	ToggleSubscription(ctx context.Context, viewer domain.ViewerID, channelID uuid.UUID) (domain.ToggleResult, error)
}

// PlaylistManager изменяет состав плейлистов зрителя.
type PlaylistManager interface {
	AddVideo(ctx context.Context, viewer domain.ViewerID, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, viewer domain.ViewerID, playlistID, videoID uuid.UUID) error
}

// ViewRecorder выполняет побочные записи просмотра видео.
// Ошибки не возвращаются вызывающему: они логируются и учитываются в SideEffectStats.
type ViewRecorder interface {
	RecordView(ctx context.Context, videoID uuid.UUID, viewer domain.ViewerID)
}
