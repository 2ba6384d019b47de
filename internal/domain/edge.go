package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// TargetType — тип сущности, которую можно лайкнуть.
type TargetType string

const (
	TargetVideo   TargetType = "video"
	TargetComment TargetType = "comment"
	TargetPost    TargetType = "post"
)

// ParseTargetType разбирает тип цели лайка из пути запроса.
func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(s); t {
	case TargetVideo, TargetComment, TargetPost:
		return t, nil
	default:
		return "", apperrors.Validation("unsupported like target type %q", s).
			WithDetails("target_type must be one of: video, comment, post")
	}
}

// Collection — коллекция, в которой хранятся цели этого типа.
func (t TargetType) Collection() string {
	switch t {
	case TargetVideo:
		return CollectionVideos
	case TargetComment:
		return CollectionComments
	case TargetPost:
		return CollectionPosts
	default:
		return ""
	}
}

// LikeEdge — ребро «пользователь лайкнул цель». Ключ: (LikerID, TargetType, TargetID).
type LikeEdge struct {
	ID         uuid.UUID  `json:"id"`
	LikerID    uuid.UUID  `json:"liker_id"`
	TargetType TargetType `json:"target_type"`
	TargetID   uuid.UUID  `json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// LikeKey — ключ уникальности лайка.
type LikeKey struct {
	LikerID    uuid.UUID
	TargetType TargetType
	TargetID   uuid.UUID
}

func (k LikeKey) String() string {
	return "like:" + k.LikerID.String() + ":" + string(k.TargetType) + ":" + k.TargetID.String()
}

// SubscriptionEdge — ребро «подписчик подписан на канал». Ключ: (SubscriberID, ChannelID).
type SubscriptionEdge struct {
	ID           uuid.UUID `json:"id"`
	SubscriberID uuid.UUID `json:"subscriber_id"`
	ChannelID    uuid.UUID `json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubscriptionKey — ключ уникальности подписки.
type SubscriptionKey struct {
	SubscriberID uuid.UUID
	ChannelID    uuid.UUID
}

func (k SubscriptionKey) String() string {
	return "subscription:" + k.SubscriberID.String() + ":" + k.ChannelID.String()
}

// EdgeState — состояние ребра после переключения.
type EdgeState string

const (
	EdgeCreated EdgeState = "created"
	EdgeRemoved EdgeState = "removed"
)

// ToggleResult — результат переключения ребра.
type ToggleResult struct {
	State EdgeState `json:"state"`
}
