package domain

import (
	"time"

	"github.com/google/uuid"
)

// User представляет пользователя (он же канал).
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FullName     string      `json:"full_name"`
	AvatarRef    string      `json:"avatar_ref"`
	CoverRef     string      `json:"cover_ref"`
	WatchHistory []uuid.UUID `json:"-"`
	PasswordHash string      `json:"-"`
	RefreshToken string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// UserSummary — краткое представление владельца, встраиваемое в другие read-модели.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarRef string    `json:"avatar_ref"`
}
