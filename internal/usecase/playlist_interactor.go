package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// playlistManager implements PlaylistManager
type playlistManager struct {
	store  ports.EntityStore
	editor ports.PlaylistEditor
	logger *slog.Logger
}

func NewPlaylistManager(store ports.EntityStore, editor ports.PlaylistEditor, logger *slog.Logger) PlaylistManager {
	return &playlistManager{store: store, editor: editor, logger: logger}
}

// AddVideo добавляет видео в плейлист зрителя; повторное добавление — Conflict.
func (m *playlistManager) AddVideo(ctx context.Context, viewer domain.ViewerID, playlistID, videoID uuid.UUID) error {
	if err := m.authorize(ctx, viewer, playlistID); err != nil {
		return err
	}
	if err := m.editor.AddVideo(ctx, playlistID, videoID); err != nil {
		return err
	}
	m.logger.Info("playlist video added", "playlist_id", playlistID, "video_id", videoID)
	return nil
}

// RemoveVideo убирает видео из плейлиста зрителя.
func (m *playlistManager) RemoveVideo(ctx context.Context, viewer domain.ViewerID, playlistID, videoID uuid.UUID) error {
	if err := m.authorize(ctx, viewer, playlistID); err != nil {
		return err
	}
	if err := m.editor.RemoveVideo(ctx, playlistID, videoID); err != nil {
		return err
	}
	m.logger.Info("playlist video removed", "playlist_id", playlistID, "video_id", videoID)
	return nil
}

// authorize проверяет, что плейлист существует и принадлежит зрителю.
func (m *playlistManager) authorize(ctx context.Context, viewer domain.ViewerID, playlistID uuid.UUID) error {
	if !viewer.Present() {
		return apperrors.Validation("viewer is required to edit playlists")
	}
	docs, err := m.store.Find(ctx, domain.CollectionPlaylists, pipeline.Where(pipeline.Eq("id", playlistID.String())))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return apperrors.NotFound("playlist %s not found", playlistID)
	}
	if docs[0].String("owner_id") != viewer.String() {
		return apperrors.InvalidOperation("only the playlist owner can edit it")
	}
	return nil
}
