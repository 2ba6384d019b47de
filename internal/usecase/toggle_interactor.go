package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// relationshipToggler implements RelationshipToggler
type relationshipToggler struct {
	store  ports.EntityStore
	edges  ports.EdgeStore
	logger *slog.Logger
}

// NewRelationshipToggler создает сервис переключения рёбер.
// Проверка существования цели выполняется до записи; само переключение —
// одна атомарная операция EdgeStore.
func NewRelationshipToggler(store ports.EntityStore, edges ports.EdgeStore, logger *slog.Logger) RelationshipToggler {
	return &relationshipToggler{store: store, edges: edges, logger: logger}
}

func (t *relationshipToggler) ToggleLike(ctx context.Context, viewer domain.ViewerID, targetType domain.TargetType, targetID uuid.UUID) (domain.ToggleResult, error) {
	if !viewer.Present() {
		return domain.ToggleResult{}, apperrors.Validation("viewer is required to like")
	}
	collection := targetType.Collection()
	if collection == "" {
		return domain.ToggleResult{}, apperrors.Validation("unsupported like target type %q", targetType)
	}

	ok, err := exists(ctx, t.store, collection, targetID)
	if err != nil {
		return domain.ToggleResult{}, err
	}
	if !ok {
		return domain.ToggleResult{}, apperrors.NotFound("%s %s not found", targetType, targetID)
	}

	state, err := t.edges.ToggleLike(ctx, domain.LikeKey{
		LikerID:    viewer.ID(),
		TargetType: targetType,
		TargetID:   targetID,
	})
	if err != nil {
		t.logger.Error("failed to toggle like",
			"viewer_id", viewer.String(),
			"target_type", targetType,
			"target_id", targetID,
			"error", err,
		)
		return domain.ToggleResult{}, err
	}

	t.logger.Info("like toggled", "viewer_id", viewer.String(), "target_type", targetType, "target_id", targetID, "state", state)
	return domain.ToggleResult{State: state}, nil
}

func (t *relationshipToggler) ToggleSubscription(ctx context.Context, viewer domain.ViewerID, channelID uuid.UUID) (domain.ToggleResult, error) {
	if !viewer.Present() {
		return domain.ToggleResult{}, apperrors.Validation("viewer is required to subscribe")
	}
	if viewer.ID() == channelID {
		return domain.ToggleResult{}, apperrors.InvalidOperation("cannot subscribe to own channel")
	}

	ok, err := exists(ctx, t.store, domain.CollectionUsers, channelID)
	if err != nil {
		return domain.ToggleResult{}, err
	}
	if !ok {
		return domain.ToggleResult{}, apperrors.NotFound("channel %s not found", channelID)
	}

	state, err := t.edges.ToggleSubscription(ctx, domain.SubscriptionKey{
		SubscriberID: viewer.ID(),
		ChannelID:    channelID,
	})
	if err != nil {
		t.logger.Error("failed to toggle subscription", "viewer_id", viewer.String(), "channel_id", channelID, "error", err)
		return domain.ToggleResult{}, err
	}

	t.logger.Info("subscription toggled", "viewer_id", viewer.String(), "channel_id", channelID, "state", state)
	return domain.ToggleResult{State: state}, nil
}
