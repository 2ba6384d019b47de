package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pagination"
	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// viewComposer implements ViewComposer
type viewComposer struct {
	store    ports.EntityStore
	exec     *pipeline.Executor
	recorder ViewRecorder
	refs     ports.RefResolver
	logger   *slog.Logger
}

// NewViewComposer создает композитор представлений.
// recorder и refs могут быть nil: тогда побочные записи просмотра не выполняются,
// а ссылки на медиа отдаются как есть.
func NewViewComposer(store ports.EntityStore, recorder ViewRecorder, refs ports.RefResolver, logger *slog.Logger) ViewComposer {
	return &viewComposer{
		store:    store,
		exec:     pipeline.NewExecutor(store),
		recorder: recorder,
		refs:     refs,
		logger:   logger,
	}
}

func (c *viewComposer) ComposeChannelProfile(ctx context.Context, username string, viewer domain.ViewerID) (*domain.ChannelProfile, error) {
	if username == "" {
		return nil, apperrors.Validation("username is required")
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionUsers, Where: pipeline.Where(pipeline.Eq("username", username))},
		pipeline.Join{From: domain.CollectionSubscriptions, LocalField: "id", ForeignField: "channel_id", As: "subscribers"},
		pipeline.Join{From: domain.CollectionSubscriptions, LocalField: "id", ForeignField: "subscriber_id", As: "subscribed_to"},
		pipeline.Compute{Field: "subscriber_count", Expr: pipeline.Size("subscribers")},
		pipeline.Compute{Field: "subscribed_to_count", Expr: pipeline.Size("subscribed_to")},
		pipeline.Compute{Field: "is_subscribed", Expr: pipeline.HasMember("subscribers", "subscriber_id", viewer.String())},
		pipeline.Project{Fields: []string{
			"id", "username", "email", "full_name", "avatar_ref", "cover_ref", "created_at",
			"subscriber_count", "subscribed_to_count", "is_subscribed",
		}},
	)
	if err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, apperrors.NotFound("channel %q not found", username)
	}

	d := res.Docs[0]
	return &domain.ChannelProfile{
		ID:                docID(d, "id"),
		Username:          d.String("username"),
		Email:             d.String("email"),
		FullName:          d.String("full_name"),
		AvatarRef:         c.resolve(ctx, d.String("avatar_ref")),
		CoverRef:          c.resolve(ctx, d.String("cover_ref")),
		CreatedAt:         d.Time("created_at"),
		SubscriberCount:   d.Int("subscriber_count"),
		SubscribedToCount: d.Int("subscribed_to_count"),
		IsSubscribed:      d.Bool("is_subscribed"),
	}, nil
}

func (c *viewComposer) ComposeVideoDetail(ctx context.Context, videoID uuid.UUID, viewer domain.ViewerID) (*domain.VideoDetail, error) {
	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionVideos, Where: pipeline.Where(pipeline.Eq("id", videoID.String()))},
		pipeline.Join{
			From: domain.CollectionUsers, LocalField: "owner_id", ForeignField: "id", As: "owner", Single: true,
			Stages: []pipeline.Stage{
				pipeline.Join{From: domain.CollectionSubscriptions, LocalField: "id", ForeignField: "channel_id", As: "subscribers"},
				pipeline.Compute{Field: "subscriber_count", Expr: pipeline.Size("subscribers")},
				pipeline.Compute{Field: "is_subscribed", Expr: pipeline.HasMember("subscribers", "subscriber_id", viewer.String())},
				pipeline.Project{Fields: fields(userSummaryFields, []string{"subscriber_count", "is_subscribed"})},
			},
		},
		likesJoin(domain.TargetVideo),
		pipeline.Compute{Field: "like_count", Expr: pipeline.Size("likes")},
		pipeline.Compute{Field: "is_liked", Expr: pipeline.HasMember("likes", "liker_id", viewer.String())},
		pipeline.Project{Fields: fields(videoFields, []string{"owner", "like_count", "is_liked"})},
	)
	if err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, apperrors.NotFound("video %s not found", videoID)
	}

	d := res.Docs[0]
	detail := &domain.VideoDetail{
		ID:              docID(d, "id"),
		Title:           d.String("title"),
		Description:     d.String("description"),
		MediaRef:        c.resolve(ctx, d.String("media_ref")),
		ThumbnailRef:    c.resolve(ctx, d.String("thumbnail_ref")),
		DurationSeconds: d.Int("duration_seconds"),
		ViewCount:       d.Int("view_count"),
		IsPublished:     d.Bool("is_published"),
		CreatedAt:       d.Time("created_at"),
		LikeCount:       d.Int("like_count"),
		IsLiked:         d.Bool("is_liked"),
	}
	if owner := d.Doc("owner"); owner != nil {
		detail.Owner = &domain.OwnerDetail{
			UserSummary:     *c.userSummary(ctx, owner),
			SubscriberCount: owner.Int("subscriber_count"),
			IsSubscribed:    owner.Bool("is_subscribed"),
		}
	}

	if viewer.Present() && c.recorder != nil {
		c.recorder.RecordView(ctx, videoID, viewer)
	}
	return detail, nil
}

func (c *viewComposer) ComposeUserPlaylists(ctx context.Context, userID uuid.UUID) ([]domain.PlaylistCard, error) {
	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionPlaylists, Where: pipeline.Where(pipeline.Eq("owner_id", userID.String()))},
		pipeline.Join{
			From: domain.CollectionVideos, LocalField: "video_ids", ForeignField: "id", As: "videos",
			Stages: []pipeline.Stage{pipeline.Project{Fields: []string{"id", "thumbnail_ref"}}},
		},
		pipeline.Compute{Field: "thumbnail_ref", Expr: pipeline.FirstField("videos", "thumbnail_ref")},
		pipeline.Compute{Field: "video_count", Expr: pipeline.Size("videos")},
		pipeline.Project{Fields: []string{"id", "name", "description", "thumbnail_ref", "video_count", "created_at"}},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
	)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.PlaylistCard, 0, len(res.Docs))
	for _, d := range res.Docs {
		card := domain.PlaylistCard{
			ID:          docID(d, "id"),
			Name:        d.String("name"),
			Description: d.String("description"),
			VideoCount:  d.Int("video_count"),
		}
		if d.String("thumbnail_ref") != "" {
			thumb := c.resolve(ctx, d.String("thumbnail_ref"))
			card.ThumbnailRef = &thumb
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (c *viewComposer) ComposePlaylistDetail(ctx context.Context, playlistID uuid.UUID) (*domain.PlaylistDetail, error) {
	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionPlaylists, Where: pipeline.Where(pipeline.Eq("id", playlistID.String()))},
		ownerJoin("owner_id"),
		pipeline.Join{
			From: domain.CollectionVideos, LocalField: "video_ids", ForeignField: "id", As: "videos",
			Stages: []pipeline.Stage{
				ownerJoin("owner_id"),
				pipeline.Project{Fields: fields(videoFields, []string{"owner"})},
			},
		},
		pipeline.Project{Fields: []string{"id", "name", "description", "created_at", "updated_at", "owner", "videos"}},
	)
	if err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, apperrors.NotFound("playlist %s not found", playlistID)
	}

	d := res.Docs[0]
	return &domain.PlaylistDetail{
		ID:          docID(d, "id"),
		Name:        d.String("name"),
		Description: d.String("description"),
		CreatedAt:   d.Time("created_at"),
		UpdatedAt:   d.Time("updated_at"),
		Owner:       c.userSummary(ctx, d.Doc("owner")),
		Videos:      c.videoSummaries(ctx, d.Docs("videos")),
	}, nil
}

func (c *viewComposer) ComposeLikedVideosFeed(ctx context.Context, viewer domain.ViewerID) ([]domain.LikedVideo, error) {
	if !viewer.Present() {
		return nil, apperrors.Validation("viewer is required to list liked videos")
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionLikes, Where: pipeline.Where(
			pipeline.Eq("liker_id", viewer.String()),
			pipeline.Eq("target_type", string(domain.TargetVideo)),
		)},
		pipeline.Join{
			From: domain.CollectionVideos, LocalField: "target_id", ForeignField: "id", As: "video", Single: true,
			Stages: []pipeline.Stage{
				ownerJoin("owner_id"),
				pipeline.Project{Fields: fields(videoFields, []string{"owner"})},
			},
		},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LikedVideo, 0, len(res.Docs))
	for _, d := range res.Docs {
		video := d.Doc("video")
		if video == nil {
			continue
		}
		out = append(out, domain.LikedVideo{
			VideoSummary: c.videoSummary(ctx, video),
			LikedAt:      d.Time("created_at"),
		})
	}
	return out, nil
}

func (c *viewComposer) ComposeSubscriberList(ctx context.Context, channelID uuid.UUID, viewer domain.ViewerID) ([]domain.SubscriberEntry, error) {
	if err := c.mustExist(ctx, domain.CollectionUsers, channelID, "channel"); err != nil {
		return nil, err
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionSubscriptions, Where: pipeline.Where(pipeline.Eq("channel_id", channelID.String()))},
		pipeline.Join{
			From: domain.CollectionUsers, LocalField: "subscriber_id", ForeignField: "id", As: "subscriber", Single: true,
			Stages: []pipeline.Stage{
				pipeline.Join{From: domain.CollectionSubscriptions, LocalField: "id", ForeignField: "channel_id", As: "subscribers"},
				pipeline.Compute{Field: "subscriber_count", Expr: pipeline.Size("subscribers")},
				pipeline.Compute{Field: "is_subscribed_back", Expr: pipeline.HasMember("subscribers", "subscriber_id", viewer.String())},
				pipeline.Project{Fields: fields(userSummaryFields, []string{"subscriber_count", "is_subscribed_back"})},
			},
		},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SubscriberEntry, 0, len(res.Docs))
	for _, d := range res.Docs {
		sub := d.Doc("subscriber")
		if sub == nil {
			continue
		}
		out = append(out, domain.SubscriberEntry{
			Subscriber:       *c.userSummary(ctx, sub),
			IsSubscribedBack: sub.Bool("is_subscribed_back"),
			SubscriberCount:  sub.Int("subscriber_count"),
		})
	}
	return out, nil
}

func (c *viewComposer) ComposeSubscribedChannelList(ctx context.Context, subscriberID uuid.UUID) ([]domain.SubscribedChannel, error) {
	if err := c.mustExist(ctx, domain.CollectionUsers, subscriberID, "user"); err != nil {
		return nil, err
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionSubscriptions, Where: pipeline.Where(pipeline.Eq("subscriber_id", subscriberID.String()))},
		pipeline.Join{
			From: domain.CollectionUsers, LocalField: "channel_id", ForeignField: "id", As: "channel", Single: true,
			Stages: []pipeline.Stage{
				pipeline.Join{
					From: domain.CollectionVideos, LocalField: "id", ForeignField: "owner_id", As: "videos",
					Stages: []pipeline.Stage{
						pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
					},
				},
				pipeline.Compute{Field: "latest_video", Expr: pipeline.First("videos")},
				pipeline.Project{Fields: fields(userSummaryFields, []string{"latest_video"})},
			},
		},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SubscribedChannel, 0, len(res.Docs))
	for _, d := range res.Docs {
		ch := d.Doc("channel")
		if ch == nil {
			continue
		}
		entry := domain.SubscribedChannel{Channel: *c.userSummary(ctx, ch)}
		if latest := ch.Doc("latest_video"); latest != nil {
			v := c.videoSummary(ctx, latest)
			entry.LatestVideo = &v
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *viewComposer) ComposeVideoFeed(ctx context.Context, q domain.VideoFeedQuery) (pagination.Page[domain.VideoSummary], error) {
	where := pipeline.Where(pipeline.Eq("is_published", true))
	if q.Query != "" {
		where = append(where, pipeline.Text(q.Query, "title", "description"))
	}
	if q.OwnerID != uuid.Nil {
		where = append(where, pipeline.Eq("owner_id", q.OwnerID.String()))
	}
	sortBy, desc := q.SortBy, q.SortDesc
	if sortBy == "" {
		sortBy, desc = domain.SortByCreatedAt, true
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionVideos, Where: where},
		ownerJoin("owner_id"),
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: sortBy.Column(), Desc: desc}}},
		pipeline.Paginate{Page: q.Page, Limit: q.Limit},
	)
	if err != nil {
		return pagination.Page[domain.VideoSummary]{}, err
	}
	return pageOf(res, c.videoSummaries(ctx, res.Docs)), nil
}

func (c *viewComposer) ComposeVideoComments(ctx context.Context, videoID uuid.UUID, page, limit int, viewer domain.ViewerID) (pagination.Page[domain.CommentView], error) {
	if err := c.mustExist(ctx, domain.CollectionVideos, videoID, "video"); err != nil {
		return pagination.Page[domain.CommentView]{}, err
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionComments, Where: pipeline.Where(pipeline.Eq("video_id", videoID.String()))},
		ownerJoin("owner_id"),
		likesJoin(domain.TargetComment),
		pipeline.Compute{Field: "like_count", Expr: pipeline.Size("likes")},
		pipeline.Compute{Field: "is_liked", Expr: pipeline.HasMember("likes", "liker_id", viewer.String())},
		pipeline.Project{Fields: []string{"id", "video_id", "content", "created_at", "owner", "like_count", "is_liked"}},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
		pipeline.Paginate{Page: page, Limit: limit},
	)
	if err != nil {
		return pagination.Page[domain.CommentView]{}, err
	}

	items := make([]domain.CommentView, 0, len(res.Docs))
	for _, d := range res.Docs {
		items = append(items, domain.CommentView{
			ID:        docID(d, "id"),
			VideoID:   docID(d, "video_id"),
			Content:   d.String("content"),
			CreatedAt: d.Time("created_at"),
			Owner:     c.userSummary(ctx, d.Doc("owner")),
			LikeCount: d.Int("like_count"),
			IsLiked:   d.Bool("is_liked"),
		})
	}
	return pageOf(res, items), nil
}

func (c *viewComposer) ComposeChannelStats(ctx context.Context, channelID uuid.UUID) (*domain.ChannelStats, error) {
	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionUsers, Where: pipeline.Where(pipeline.Eq("id", channelID.String()))},
		pipeline.Join{From: domain.CollectionSubscriptions, LocalField: "id", ForeignField: "channel_id", As: "subscribers"},
		pipeline.Join{
			From: domain.CollectionVideos, LocalField: "id", ForeignField: "owner_id", As: "videos",
			Stages: []pipeline.Stage{
				likesJoin(domain.TargetVideo),
				pipeline.Compute{Field: "like_count", Expr: pipeline.Size("likes")},
				pipeline.Project{Fields: []string{"id", "owner_id", "view_count", "like_count"}},
			},
		},
		pipeline.Compute{Field: "total_subscribers", Expr: pipeline.Size("subscribers")},
		pipeline.Compute{Field: "total_videos", Expr: pipeline.Size("videos")},
		pipeline.Compute{Field: "total_views", Expr: pipeline.Sum("videos", "view_count")},
		pipeline.Compute{Field: "total_likes", Expr: pipeline.Sum("videos", "like_count")},
		pipeline.Project{Fields: []string{"total_subscribers", "total_videos", "total_views", "total_likes"}},
	)
	if err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, apperrors.NotFound("channel %s not found", channelID)
	}

	d := res.Docs[0]
	return &domain.ChannelStats{
		TotalSubscribers: d.Int("total_subscribers"),
		TotalVideos:      d.Int("total_videos"),
		TotalViews:       d.Int("total_views"),
		TotalLikes:       d.Int("total_likes"),
	}, nil
}

func (c *viewComposer) ComposeChannelVideos(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelVideo, error) {
	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionVideos, Where: pipeline.Where(pipeline.Eq("owner_id", channelID.String()))},
		likesJoin(domain.TargetVideo),
		pipeline.Compute{Field: "like_count", Expr: pipeline.Size("likes")},
		pipeline.Project{Fields: fields(videoFields, []string{"like_count"})},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ChannelVideo, 0, len(res.Docs))
	for _, d := range res.Docs {
		out = append(out, domain.ChannelVideo{
			VideoSummary: c.videoSummary(ctx, d),
			LikeCount:    d.Int("like_count"),
		})
	}
	return out, nil
}

func (c *viewComposer) ComposeUserPosts(ctx context.Context, userID uuid.UUID, viewer domain.ViewerID) ([]domain.PostView, error) {
	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionPosts, Where: pipeline.Where(pipeline.Eq("owner_id", userID.String()))},
		ownerJoin("owner_id"),
		likesJoin(domain.TargetPost),
		pipeline.Compute{Field: "like_count", Expr: pipeline.Size("likes")},
		pipeline.Compute{Field: "is_liked", Expr: pipeline.HasMember("likes", "liker_id", viewer.String())},
		pipeline.Project{Fields: []string{"id", "content", "created_at", "owner", "like_count", "is_liked"}},
		pipeline.Sort{Keys: []pipeline.SortKey{{Field: "created_at", Desc: true}}},
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PostView, 0, len(res.Docs))
	for _, d := range res.Docs {
		out = append(out, domain.PostView{
			ID:        docID(d, "id"),
			Content:   d.String("content"),
			CreatedAt: d.Time("created_at"),
			Owner:     c.userSummary(ctx, d.Doc("owner")),
			LikeCount: d.Int("like_count"),
			IsLiked:   d.Bool("is_liked"),
		})
	}
	return out, nil
}

func (c *viewComposer) ComposeWatchHistory(ctx context.Context, viewer domain.ViewerID) ([]domain.VideoSummary, error) {
	if !viewer.Present() {
		return nil, apperrors.Validation("viewer is required to read watch history")
	}

	res, err := c.exec.Run(ctx,
		pipeline.Match{From: domain.CollectionUsers, Where: pipeline.Where(pipeline.Eq("id", viewer.String()))},
		pipeline.Join{
			From: domain.CollectionVideos, LocalField: "watch_history", ForeignField: "id", As: "history",
			Stages: []pipeline.Stage{
				ownerJoin("owner_id"),
				pipeline.Project{Fields: fields(videoFields, []string{"owner"})},
			},
		},
		pipeline.Project{Fields: []string{"id", "history"}},
	)
	if err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, apperrors.NotFound("user %s not found", viewer.ID())
	}
	return c.videoSummaries(ctx, res.Docs[0].Docs("history")), nil
}

// mustExist возвращает NotFound, если сущности с таким id нет в коллекции.
func (c *viewComposer) mustExist(ctx context.Context, collection string, id uuid.UUID, what string) error {
	ok, err := exists(ctx, c.store, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("%s %s not found", what, id)
	}
	return nil
}

func exists(ctx context.Context, store ports.EntityStore, collection string, id uuid.UUID) (bool, error) {
	docs, err := store.Find(ctx, collection, pipeline.Where(pipeline.Eq("id", id.String())))
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

func pageOf[T any](res pipeline.Result, items []T) pagination.Page[T] {
	p := pagination.Page[T]{Items: items}
	if res.Page != nil {
		p.Page = res.Page.Page
		p.Limit = res.Page.Limit
		p.TotalCount = res.Page.TotalCount
		p.TotalPages = res.Page.TotalPages
	}
	return p
}
