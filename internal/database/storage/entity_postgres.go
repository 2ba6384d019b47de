package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// PostgresStore реализует EntityStore, EdgeStore и ActivityStore поверх PostgreSQL (sqlx + lib/pq).
type PostgresStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresStore(db *sqlx.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// loader выполняет SELECT и превращает строки в документы.
type loader func(ctx context.Context, q sqlx.QueryerContext, query string, args []any) ([]pipeline.Doc, error)

func load[R any](toDoc func(R) pipeline.Doc) loader {
	return func(ctx context.Context, q sqlx.QueryerContext, query string, args []any) ([]pipeline.Doc, error) {
		var rows []R
		if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
			return nil, err
		}
		docs := make([]pipeline.Doc, 0, len(rows))
		for _, r := range rows {
			docs = append(docs, toDoc(r))
		}
		return docs, nil
	}
}

type collection struct {
	table
	load loader
}

var collections = map[string]collection{
	domain.CollectionUsers: {
		table: table{name: "users", columns: []column{
			{"id", colUUID}, {"username", colText}, {"email", colText}, {"full_name", colText},
			{"avatar_ref", colText}, {"cover_ref", colText}, {"watch_history", colUUIDArray},
			{"password_hash", colText}, {"refresh_token", colText},
			{"created_at", colTime}, {"updated_at", colTime},
		}},
		load: load(func(r userRow) pipeline.Doc { return userDoc(r.toDomain()) }),
	},
	domain.CollectionVideos: {
		table: table{name: "videos", columns: []column{
			{"id", colUUID}, {"owner_id", colUUID}, {"title", colText}, {"description", colText},
			{"media_ref", colText}, {"thumbnail_ref", colText}, {"duration_seconds", colInt},
			{"view_count", colInt}, {"is_published", colBool},
			{"created_at", colTime}, {"updated_at", colTime},
		}},
		load: load(func(r videoRow) pipeline.Doc { return videoDoc(domain.Video(r)) }),
	},
	domain.CollectionComments: {
		table: table{name: "comments", columns: []column{
			{"id", colUUID}, {"video_id", colUUID}, {"owner_id", colUUID}, {"content", colText},
			{"created_at", colTime}, {"updated_at", colTime},
		}},
		load: load(func(r commentRow) pipeline.Doc { return commentDoc(domain.Comment(r)) }),
	},
	domain.CollectionPosts: {
		table: table{name: "posts", columns: []column{
			{"id", colUUID}, {"owner_id", colUUID}, {"content", colText},
			{"created_at", colTime}, {"updated_at", colTime},
		}},
		load: load(func(r postRow) pipeline.Doc { return postDoc(domain.ShortPost(r)) }),
	},
	domain.CollectionLikes: {
		table: table{name: "likes", columns: []column{
			{"id", colUUID}, {"liker_id", colUUID}, {"target_type", colText}, {"target_id", colUUID},
			{"created_at", colTime},
		}},
		load: load(func(r likeRow) pipeline.Doc { return likeDoc(r.toDomain()) }),
	},
	domain.CollectionSubscriptions: {
		table: table{name: "subscriptions", columns: []column{
			{"id", colUUID}, {"subscriber_id", colUUID}, {"channel_id", colUUID}, {"created_at", colTime},
		}},
		load: load(func(r subscriptionRow) pipeline.Doc { return subscriptionDoc(domain.SubscriptionEdge(r)) }),
	},
	domain.CollectionPlaylists: {
		table: table{name: "playlists", columns: []column{
			{"id", colUUID}, {"owner_id", colUUID}, {"name", colText}, {"description", colText},
			{"video_ids", colUUIDArray}, {"created_at", colTime}, {"updated_at", colTime},
		}},
		load: load(func(r playlistRow) pipeline.Doc { return playlistDoc(r.toDomain()) }),
	},
}

// Find выполняет отфильтрованный скан коллекции.
func (s *PostgresStore) Find(ctx context.Context, name string, where pipeline.Filter) ([]pipeline.Doc, error) {
	start := time.Now()

	c, ok := collections[name]
	if !ok {
		return nil, apperrors.New(apperrors.KindInternal, "unknown collection %q", name)
	}
	clause, args, none, err := buildWhere(c.table, where)
	if err != nil {
		s.logger.Error("failed to build filter", "collection", name, "error", err)
		return nil, err
	}
	if none {
		return []pipeline.Doc{}, nil
	}

	docs, err := c.load(ctx, s.db, c.selectQuery()+clause, args)
	if err != nil {
		s.logger.Error("failed to find documents", "collection", name, "error", err)
		return nil, mapError(err, "find "+name)
	}

	s.logger.Debug("documents found",
		"collection", name,
		"count", len(docs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return docs, nil
}

// Строки таблиц. Текстовые колонки объявлены NOT NULL DEFAULT ''.

type userRow struct {
	ID           uuid.UUID      `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	FullName     string         `db:"full_name"`
	AvatarRef    string         `db:"avatar_ref"`
	CoverRef     string         `db:"cover_ref"`
	WatchHistory pq.StringArray `db:"watch_history"`
	PasswordHash string         `db:"password_hash"`
	RefreshToken string         `db:"refresh_token"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		FullName:     r.FullName,
		AvatarRef:    r.AvatarRef,
		CoverRef:     r.CoverRef,
		WatchHistory: parseIDs(r.WatchHistory),
		PasswordHash: r.PasswordHash,
		RefreshToken: r.RefreshToken,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type videoRow struct {
	ID              uuid.UUID `db:"id"`
	OwnerID         uuid.UUID `db:"owner_id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	MediaRef        string    `db:"media_ref"`
	ThumbnailRef    string    `db:"thumbnail_ref"`
	DurationSeconds int64     `db:"duration_seconds"`
	ViewCount       int64     `db:"view_count"`
	IsPublished     bool      `db:"is_published"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type commentRow struct {
	ID        uuid.UUID `db:"id"`
	VideoID   uuid.UUID `db:"video_id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type postRow struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type likeRow struct {
	ID         uuid.UUID `db:"id"`
	LikerID    uuid.UUID `db:"liker_id"`
	TargetType string    `db:"target_type"`
	TargetID   uuid.UUID `db:"target_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r likeRow) toDomain() domain.LikeEdge {
	return domain.LikeEdge{
		ID:         r.ID,
		LikerID:    r.LikerID,
		TargetType: domain.TargetType(r.TargetType),
		TargetID:   r.TargetID,
		CreatedAt:  r.CreatedAt,
	}
}

type subscriptionRow struct {
	ID           uuid.UUID `db:"id"`
	SubscriberID uuid.UUID `db:"subscriber_id"`
	ChannelID    uuid.UUID `db:"channel_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type playlistRow struct {
	ID          uuid.UUID      `db:"id"`
	OwnerID     uuid.UUID      `db:"owner_id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	VideoIDs    pq.StringArray `db:"video_ids"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r playlistRow) toDomain() domain.Playlist {
	return domain.Playlist{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		VideoIDs:    parseIDs(r.VideoIDs),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func parseIDs(raw []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}
