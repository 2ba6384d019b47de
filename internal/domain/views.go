package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// Read-модели, собираемые композитором представлений.
// Счётчики всегда присутствуют (0 для пустого множества); флаги членства
// равны false, если зритель не известен.

// ChannelProfile — публичный профиль канала.
type ChannelProfile struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	AvatarRef         string    `json:"avatar_ref"`
	CoverRef          string    `json:"cover_ref"`
	CreatedAt         time.Time `json:"created_at"`
	SubscriberCount   int64     `json:"subscriber_count"`
	SubscribedToCount int64     `json:"subscribed_to_count"`
	IsSubscribed      bool      `json:"is_subscribed"`
}

// OwnerDetail — владелец видео с его числом подписчиков.
type OwnerDetail struct {
	UserSummary
	SubscriberCount int64 `json:"subscriber_count"`
	IsSubscribed    bool  `json:"is_subscribed"`
}

// VideoDetail — страница видео.
type VideoDetail struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	MediaRef        string       `json:"media_ref"`
	ThumbnailRef    string       `json:"thumbnail_ref"`
	DurationSeconds int64        `json:"duration_seconds"`
	ViewCount       int64        `json:"view_count"`
	IsPublished     bool         `json:"is_published"`
	CreatedAt       time.Time    `json:"created_at"`
	Owner           *OwnerDetail `json:"owner"`
	LikeCount       int64        `json:"like_count"`
	IsLiked         bool         `json:"is_liked"`
}

// VideoSummary — карточка видео в списках. Owner равен nil, если владелец удалён.
type VideoSummary struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	MediaRef        string       `json:"media_ref"`
	ThumbnailRef    string       `json:"thumbnail_ref"`
	DurationSeconds int64        `json:"duration_seconds"`
	ViewCount       int64        `json:"view_count"`
	IsPublished     bool         `json:"is_published"`
	CreatedAt       time.Time    `json:"created_at"`
	Owner           *UserSummary `json:"owner,omitempty"`
}

// LikedVideo — видео из ленты понравившегося.
type LikedVideo struct {
	VideoSummary
	LikedAt time.Time `json:"liked_at"`
}

// PlaylistCard — плейлист в списке плейлистов пользователя.
// ThumbnailRef равен nil для пустого плейлиста.
type PlaylistCard struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ThumbnailRef *string   `json:"thumbnail_ref"`
	VideoCount   int64     `json:"video_count"`
}

// PlaylistDetail — плейлист с владельцем и видео в порядке плейлиста.
type PlaylistDetail struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Owner       *UserSummary   `json:"owner"`
	Videos      []VideoSummary `json:"videos"`
}

// SubscriberEntry — подписчик канала.
type SubscriberEntry struct {
	Subscriber UserSummary `json:"subscriber"`
	// IsSubscribedBack — подписан ли зритель на этого подписчика.
	IsSubscribedBack bool  `json:"is_subscribed_back"`
	SubscriberCount  int64 `json:"subscriber_count"`
}

// SubscribedChannel — канал, на который подписан пользователь.
type SubscribedChannel struct {
	Channel     UserSummary   `json:"channel"`
	LatestVideo *VideoSummary `json:"latest_video"`
}

// CommentView — комментарий с автором и лайками.
type CommentView struct {
	ID        uuid.UUID    `json:"id"`
	VideoID   uuid.UUID    `json:"video_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Owner     *UserSummary `json:"owner"`
	LikeCount int64        `json:"like_count"`
	IsLiked   bool         `json:"is_liked"`
}

// PostView — короткая запись с автором и лайками.
type PostView struct {
	ID        uuid.UUID    `json:"id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Owner     *UserSummary `json:"owner"`
	LikeCount int64        `json:"like_count"`
	IsLiked   bool         `json:"is_liked"`
}

// ChannelVideo — видео в панели автора.
type ChannelVideo struct {
	VideoSummary
	LikeCount int64 `json:"like_count"`
}

// ChannelStats — сводная статистика канала.
type ChannelStats struct {
	TotalSubscribers int64 `json:"total_subscribers"`
	TotalVideos      int64 `json:"total_videos"`
	TotalViews       int64 `json:"total_views"`
	TotalLikes       int64 `json:"total_likes"`
}

// SortField — поле сортировки ленты видео.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByViews     SortField = "views"
	SortByDuration  SortField = "duration"
	SortByTitle     SortField = "title"
)

// ParseSortField разбирает sortBy; пустое значение — сортировка по дате создания.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(s)); f {
	case "":
		return SortByCreatedAt, nil
	case SortByCreatedAt, SortByViews, SortByDuration, SortByTitle:
		return f, nil
	default:
		return "", apperrors.Validation("unsupported sortBy %q", s).
			WithDetails("sortBy must be one of: createdAt, views, duration, title")
	}
}

// Column — имя поля документа, по которому идёт сортировка.
func (f SortField) Column() string {
	switch f {
	case SortByViews:
		return "view_count"
	case SortByDuration:
		return "duration_seconds"
	case SortByTitle:
		return "title"
	default:
		return "created_at"
	}
}

// ParseSortDesc разбирает sortType: "asc" или "desc" (по умолчанию).
func ParseSortDesc(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, apperrors.Validation("unsupported sortType %q", s).
			WithDetails("sortType must be asc or desc")
	}
}

// VideoFeedQuery — параметры ленты опубликованных видео.
type VideoFeedQuery struct {
	Query    string
	OwnerID  uuid.UUID // uuid.Nil — без фильтра по владельцу
	SortBy   SortField
	SortDesc bool
	Page     int
	Limit    int
}
