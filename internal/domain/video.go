package domain

import (
	"time"

	"github.com/google/uuid"
)

// Video представляет видео, принадлежащее ровно одному пользователю.
// Соответствует таблице 'videos'.
type Video struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	MediaRef        string    `json:"media_ref"`
	ThumbnailRef    string    `json:"thumbnail_ref"`
	DurationSeconds int64     `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Comment — комментарий к видео. Таблица 'comments'.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShortPost — короткая запись пользователя. Таблица 'posts'.
type ShortPost struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Playlist — упорядоченный список видео без повторов. Таблица 'playlists'.
type Playlist struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	VideoIDs    []uuid.UUID `json:"video_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Contains сообщает, входит ли видео в плейлист.
func (p Playlist) Contains(videoID uuid.UUID) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}
