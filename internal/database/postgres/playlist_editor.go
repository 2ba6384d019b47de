package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// playlistModel — GORM-модель строки таблицы playlists.
type playlistModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID      `gorm:"type:uuid"`
	VideoIDs  pq.StringArray `gorm:"type:uuid[]"`
	UpdatedAt time.Time
}

func (playlistModel) TableName() string {
	return "playlists"
}

type videoModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (videoModel) TableName() string {
	return "videos"
}

// NewGorm открывает GORM поверх уже настроенного пула соединений.
func NewGorm(db *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации GORM: %w", err)
	}
	return gdb, nil
}

// GormPlaylistEditor реализует ports.PlaylistEditor с использованием GORM.
type GormPlaylistEditor struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormPlaylistEditor создает новый экземпляр GormPlaylistEditor
func NewGormPlaylistEditor(db *gorm.DB, logger *slog.Logger) *GormPlaylistEditor {
	return &GormPlaylistEditor{db: db, logger: logger}
}

// AddVideo добавляет видео в конец плейлиста. Строка плейлиста блокируется
// на время транзакции; повторное добавление отклоняется с Conflict.
func (e *GormPlaylistEditor) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	start := time.Now()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPlaylist(tx, playlistID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&videoModel{}).Where("id = ?", videoID).Count(&count).Error; err != nil {
			return fmt.Errorf("ошибка при проверке видео: %w", err)
		}
		if count == 0 {
			return apperrors.NotFound("video %s not found", videoID)
		}

		for _, id := range p.VideoIDs {
			if id == videoID.String() {
				return apperrors.Conflict("video %s is already in playlist", videoID)
			}
		}

		return tx.Model(p).Updates(map[string]any{
			"video_ids":  gorm.Expr("array_append(video_ids, ?::uuid)", videoID),
			"updated_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		e.logger.Warn("failed to add video to playlist", "playlist_id", playlistID, "video_id", videoID, "error", err)
		return mapGormError(err, "add playlist video")
	}

	e.logger.Info("video added to playlist",
		"playlist_id", playlistID,
		"video_id", videoID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// RemoveVideo убирает видео из плейлиста; NotFound, если его там нет.
func (e *GormPlaylistEditor) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	start := time.Now()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPlaylist(tx, playlistID)
		if err != nil {
			return err
		}

		present := false
		for _, id := range p.VideoIDs {
			if id == videoID.String() {
				present = true
				break
			}
		}
		if !present {
			return apperrors.NotFound("video %s is not in playlist", videoID)
		}

		return tx.Model(p).Updates(map[string]any{
			"video_ids":  gorm.Expr("array_remove(video_ids, ?::uuid)", videoID),
			"updated_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		e.logger.Warn("failed to remove video from playlist", "playlist_id", playlistID, "video_id", videoID, "error", err)
		return mapGormError(err, "remove playlist video")
	}

	e.logger.Info("video removed from playlist",
		"playlist_id", playlistID,
		"video_id", videoID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func lockPlaylist(tx *gorm.DB, playlistID uuid.UUID) (*playlistModel, error) {
	var p playlistModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", playlistID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("playlist %s not found", playlistID)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении плейлиста: %w", err)
	}
	return &p, nil
}

func mapGormError(err error, op string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Unavailable(err, "%s", op)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57") {
		return apperrors.Unavailable(err, "%s", op)
	}
	return apperrors.Wrap(err, apperrors.KindInternal, "%s", op)
}
