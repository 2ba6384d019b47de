package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// Поля, которые попадают в read-модели. Секретные поля сюда не входят,
// а исполнитель конвейера дополнительно вычищает их из результата.
var (
	userSummaryFields = []string{"id", "username", "full_name", "avatar_ref"}
	videoFields       = []string{
		"id", "owner_id", "title", "description", "media_ref", "thumbnail_ref",
		"duration_seconds", "view_count", "is_published", "created_at",
	}
)

func fields(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ownerJoin присоединяет краткое представление владельца как поле "owner".
// Отсутствующий владелец даёт nil, а не ошибку.
func ownerJoin(localField string, extra ...pipeline.Stage) pipeline.Join {
	stages := append(extra, pipeline.Project{Fields: userSummaryFields})
	return pipeline.Join{
		From:         domain.CollectionUsers,
		LocalField:   localField,
		ForeignField: "id",
		As:           "owner",
		Single:       true,
		Stages:       stages,
	}
}

// likesJoin присоединяет лайки цели заданного типа как поле "likes".
func likesJoin(target domain.TargetType) pipeline.Join {
	return pipeline.Join{
		From:         domain.CollectionLikes,
		LocalField:   "id",
		ForeignField: "target_id",
		As:           "likes",
		Where:        pipeline.Where(pipeline.Eq("target_type", string(target))),
	}
}

func docID(d pipeline.Doc, key string) uuid.UUID {
	id, err := uuid.Parse(d.String(key))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// resolve превращает ссылку на медиа в URL; при ошибке возвращает исходную ссылку.
func (c *viewComposer) resolve(ctx context.Context, ref string) string {
	if ref == "" || c.refs == nil {
		return ref
	}
	url, err := c.refs.ResolveRef(ctx, ref)
	if err != nil {
		c.logger.Warn("failed to resolve media ref", "ref", ref, "error", err)
		return ref
	}
	return url
}

func (c *viewComposer) userSummary(ctx context.Context, d pipeline.Doc) *domain.UserSummary {
	if d == nil {
		return nil
	}
	return &domain.UserSummary{
		ID:        docID(d, "id"),
		Username:  d.String("username"),
		FullName:  d.String("full_name"),
		AvatarRef: c.resolve(ctx, d.String("avatar_ref")),
	}
}

func (c *viewComposer) videoSummary(ctx context.Context, d pipeline.Doc) domain.VideoSummary {
	return domain.VideoSummary{
		ID:              docID(d, "id"),
		Title:           d.String("title"),
		Description:     d.String("description"),
		MediaRef:        c.resolve(ctx, d.String("media_ref")),
		ThumbnailRef:    c.resolve(ctx, d.String("thumbnail_ref")),
		DurationSeconds: d.Int("duration_seconds"),
		ViewCount:       d.Int("view_count"),
		IsPublished:     d.Bool("is_published"),
		CreatedAt:       d.Time("created_at"),
		Owner:           c.userSummary(ctx, d.Doc("owner")),
	}
}

func (c *viewComposer) videoSummaries(ctx context.Context, docs []pipeline.Doc) []domain.VideoSummary {
	out := make([]domain.VideoSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, c.videoSummary(ctx, d))
	}
	return out
}
