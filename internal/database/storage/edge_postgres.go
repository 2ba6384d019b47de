package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/VideoTube/internal/domain"
)

// ToggleLike атомарно переключает лайк по ключу (liker, target_type, target).
func (s *PostgresStore) ToggleLike(ctx context.Context, key domain.LikeKey) (domain.EdgeState, error) {
	return s.toggle(ctx, key.String(),
		func(ctx context.Context, tx *sqlx.Tx) error {
			var id uuid.UUID
			return tx.GetContext(ctx, &id, `
			DELETE FROM likes
			WHERE liker_id = $1 AND target_type = $2 AND target_id = $3
			RETURNING id`,
				key.LikerID, string(key.TargetType), key.TargetID)
		},
		func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO likes (id, liker_id, target_type, target_id, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
				uuid.New(), key.LikerID, string(key.TargetType), key.TargetID, time.Now().UTC())
			return err
		},
	)
}

// ToggleSubscription атомарно переключает подписку по ключу (subscriber, channel).
func (s *PostgresStore) ToggleSubscription(ctx context.Context, key domain.SubscriptionKey) (domain.EdgeState, error) {
	return s.toggle(ctx, key.String(),
		func(ctx context.Context, tx *sqlx.Tx) error {
			var id uuid.UUID
			return tx.GetContext(ctx, &id, `
			DELETE FROM subscriptions
			WHERE subscriber_id = $1 AND channel_id = $2
			RETURNING id`,
				key.SubscriberID, key.ChannelID)
		},
		func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
			VALUES ($1, $2, $3, $4)`,
				uuid.New(), key.SubscriberID, key.ChannelID, time.Now().UTC())
			return err
		},
	)
}

// toggle выполняет переключение ребра в одной транзакции.
// pg_advisory_xact_lock сериализует только вызовы с тем же ключом ребра
// и снимается при завершении транзакции. remove возвращает sql.ErrNoRows,
// если ребра не было.
func (s *PostgresStore) toggle(
	ctx context.Context,
	lockKey string,
	remove func(context.Context, *sqlx.Tx) error,
	insert func(context.Context, *sqlx.Tx) error,
) (domain.EdgeState, error) {
	start := time.Now()
	op := "toggle " + lockKey

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin toggle transaction", "key", lockKey, "error", err)
		return "", mapError(err, op)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		s.logger.Error("failed to acquire edge lock", "key", lockKey, "error", err)
		return "", mapError(err, op)
	}

	state := domain.EdgeRemoved
	err = remove(ctx, tx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := insert(ctx, tx); err != nil {
			s.logger.Warn("failed to insert edge", "key", lockKey, "error", err)
			return "", mapError(err, op)
		}
		state = domain.EdgeCreated
	case err != nil:
		s.logger.Error("failed to delete edge", "key", lockKey, "error", err)
		return "", mapError(err, op)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit toggle", "key", lockKey, "error", err)
		return "", mapError(fmt.Errorf("commit: %w", err), op)
	}

	s.logger.Info("edge toggled",
		"key", lockKey,
		"state", state,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return state, nil
}
