package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/domain"
	"github.com/GoArmGo/VideoTube/internal/messaging/payloads"
)

// SideEffectStats считает неудачные побочные записи просмотра.
// Записи не повторяются, поэтому счётчики нужны для последующей сверки.
type SideEffectStats struct {
	viewIncrementFailures atomic.Int64
	historyAppendFailures atomic.Int64
	publishFailures       atomic.Int64
}

// SideEffectSnapshot — срез счётчиков на момент вызова.
type SideEffectSnapshot struct {
	ViewIncrementFailures int64 `json:"view_increment_failures"`
	HistoryAppendFailures int64 `json:"history_append_failures"`
	PublishFailures       int64 `json:"publish_failures"`
}

func (s *SideEffectStats) Snapshot() SideEffectSnapshot {
	return SideEffectSnapshot{
		ViewIncrementFailures: s.viewIncrementFailures.Load(),
		HistoryAppendFailures: s.historyAppendFailures.Load(),
		PublishFailures:       s.publishFailures.Load(),
	}
}

// DirectViewRecorder пишет счётчик просмотров и историю напрямую в хранилище.
// Обе записи независимы и выполняются параллельно.
type DirectViewRecorder struct {
	activity ports.ActivityStore
	timeout  time.Duration
	stats    *SideEffectStats
	logger   *slog.Logger
}

func NewDirectViewRecorder(activity ports.ActivityStore, timeout time.Duration, stats *SideEffectStats, logger *slog.Logger) *DirectViewRecorder {
	return &DirectViewRecorder{activity: activity, timeout: timeout, stats: stats, logger: logger}
}

// RecordView выполняет обе записи с собственным таймаутом, не зависящим
// от отмены запроса, и ждёт их завершения.
func (r *DirectViewRecorder) RecordView(ctx context.Context, videoID uuid.UUID, viewer domain.ViewerID) {
	if !viewer.Present() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	_ = r.apply(ctx, videoID, viewer.ID())
}

// HandleViewEvent применяет событие просмотра из очереди (режим воркера).
func (r *DirectViewRecorder) HandleViewEvent(ctx context.Context, p payloads.VideoViewPayload) error {
	videoID, err := uuid.Parse(p.VideoID)
	if err != nil {
		return fmt.Errorf("invalid video_id in view event: %w", err)
	}
	viewerID, err := uuid.Parse(p.ViewerID)
	if err != nil {
		return fmt.Errorf("invalid viewer_id in view event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.apply(ctx, videoID, viewerID)
}

func (r *DirectViewRecorder) apply(ctx context.Context, videoID, viewerID uuid.UUID) error {
	var g errgroup.Group

	g.Go(func() error {
		if err := r.activity.IncrementViews(ctx, videoID); err != nil {
			r.stats.viewIncrementFailures.Add(1)
			r.logger.Warn("failed to increment video views",
				"video_id", videoID,
				"viewer_id", viewerID,
				"error", err,
			)
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := r.activity.AppendWatchHistory(ctx, viewerID, videoID); err != nil {
			r.stats.historyAppendFailures.Add(1)
			r.logger.Warn("failed to append watch history",
				"video_id", videoID,
				"viewer_id", viewerID,
				"error", err,
			)
			return err
		}
		return nil
	})

	return g.Wait()
}

// QueueViewRecorder публикует событие просмотра в очередь; записи выполняет воркер.
type QueueViewRecorder struct {
	publisher ports.ViewEventPublisher
	timeout   time.Duration
	stats     *SideEffectStats
	logger    *slog.Logger
}

func NewQueueViewRecorder(publisher ports.ViewEventPublisher, timeout time.Duration, stats *SideEffectStats, logger *slog.Logger) *QueueViewRecorder {
	return &QueueViewRecorder{publisher: publisher, timeout: timeout, stats: stats, logger: logger}
}

func (r *QueueViewRecorder) RecordView(ctx context.Context, videoID uuid.UUID, viewer domain.ViewerID) {
	if !viewer.Present() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	payload := payloads.VideoViewPayload{
		VideoID:  videoID.String(),
		ViewerID: viewer.String(),
		ViewedAt: time.Now().UTC(),
	}
	if err := r.publisher.PublishViewEvent(ctx, payload); err != nil {
		r.stats.publishFailures.Add(1)
		r.logger.Warn("failed to publish view event",
			"video_id", videoID,
			"viewer_id", viewer.String(),
			"error", err,
		)
	}
}
