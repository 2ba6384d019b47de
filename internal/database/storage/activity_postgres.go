package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// IncrementViews увеличивает счётчик просмотров видео на 1.
func (s *PostgresStore) IncrementViews(ctx context.Context, videoID uuid.UUID) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `UPDATE videos SET view_count = view_count + 1 WHERE id = $1`, videoID)
	if err != nil {
		s.logger.Error("failed to increment views", "video_id", videoID, "error", err)
		return mapError(err, "increment views")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("video %s not found", videoID)
	}

	s.logger.Debug("views incremented",
		"video_id", videoID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// AppendWatchHistory добавляет видео в конец истории просмотров,
// если его там ещё нет. Проверка и запись выполняются одним UPDATE.
func (s *PostgresStore) AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `
	UPDATE users
	SET watch_history = array_append(watch_history, $2::uuid), updated_at = now()
	WHERE id = $1 AND NOT ($2::uuid = ANY(watch_history))
	`, userID, videoID)
	if err != nil {
		s.logger.Error("failed to append watch history", "user_id", userID, "video_id", videoID, "error", err)
		return mapError(err, "append watch history")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
			return mapError(err, "append watch history")
		}
		if !exists {
			return apperrors.NotFound("user %s not found", userID)
		}
	}

	s.logger.Debug("watch history appended",
		"user_id", userID,
		"video_id", videoID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
