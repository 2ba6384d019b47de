package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// MemoryStore — хранилище сущностей в памяти процесса.
// Используется в тестах и при STORE_DRIVER=memory. Все операции
// выполняются под одним мьютексом, поэтому переключение рёбер атомарно.
type MemoryStore struct {
	mu     sync.RWMutex
	logger *slog.Logger
	now    func() time.Time

	users         []domain.User
	videos        []domain.Video
	comments      []domain.Comment
	posts         []domain.ShortPost
	likes         []domain.LikeEdge
	subscriptions []domain.SubscriptionEdge
	playlists     []domain.Playlist
}

// MemoryOption настраивает MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock задаёт источник времени для created_at новых рёбер.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(logger *slog.Logger, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find выполняет отфильтрованный скан коллекции в порядке вставки.
func (s *MemoryStore) Find(ctx context.Context, collection string, where pipeline.Filter) ([]pipeline.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "find %s", collection)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []pipeline.Doc
	switch collection {
	case domain.CollectionUsers:
		all = docsOf(s.users, userDoc)
	case domain.CollectionVideos:
		all = docsOf(s.videos, videoDoc)
	case domain.CollectionComments:
		all = docsOf(s.comments, commentDoc)
	case domain.CollectionPosts:
		all = docsOf(s.posts, postDoc)
	case domain.CollectionLikes:
		all = docsOf(s.likes, likeDoc)
	case domain.CollectionSubscriptions:
		all = docsOf(s.subscriptions, subscriptionDoc)
	case domain.CollectionPlaylists:
		all = docsOf(s.playlists, playlistDoc)
	default:
		return nil, apperrors.New(apperrors.KindInternal, "unknown collection %q", collection)
	}

	out := make([]pipeline.Doc, 0, len(all))
	for _, d := range all {
		if where.Matches(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func docsOf[T any](items []T, toDoc func(T) pipeline.Doc) []pipeline.Doc {
	out := make([]pipeline.Doc, 0, len(items))
	for _, it := range items {
		out = append(out, toDoc(it))
	}
	return out
}

// ToggleLike переключает лайк в одной критической секции.
func (s *MemoryStore) ToggleLike(ctx context.Context, key domain.LikeKey) (domain.EdgeState, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Unavailable(err, "toggle like")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasUser(key.LikerID) {
		return "", apperrors.NotFound("user %s not found", key.LikerID)
	}
	for i, l := range s.likes {
		if l.LikerID == key.LikerID && l.TargetType == key.TargetType && l.TargetID == key.TargetID {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			s.logger.Debug("edge toggled", "key", key.String(), "state", domain.EdgeRemoved)
			return domain.EdgeRemoved, nil
		}
	}
	s.likes = append(s.likes, domain.LikeEdge{
		ID:         uuid.New(),
		LikerID:    key.LikerID,
		TargetType: key.TargetType,
		TargetID:   key.TargetID,
		CreatedAt:  s.now(),
	})
	s.logger.Debug("edge toggled", "key", key.String(), "state", domain.EdgeCreated)
	return domain.EdgeCreated, nil
}

// ToggleSubscription переключает подписку в одной критической секции.
func (s *MemoryStore) ToggleSubscription(ctx context.Context, key domain.SubscriptionKey) (domain.EdgeState, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Unavailable(err, "toggle subscription")
	}
	if key.SubscriberID == key.ChannelID {
		return "", apperrors.InvalidOperation("cannot subscribe to own channel")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasUser(key.SubscriberID) || !s.hasUser(key.ChannelID) {
		return "", apperrors.NotFound("user not found")
	}
	for i, sub := range s.subscriptions {
		if sub.SubscriberID == key.SubscriberID && sub.ChannelID == key.ChannelID {
			s.subscriptions = append(s.subscriptions[:i], s.subscriptions[i+1:]...)
			s.logger.Debug("edge toggled", "key", key.String(), "state", domain.EdgeRemoved)
			return domain.EdgeRemoved, nil
		}
	}
	s.subscriptions = append(s.subscriptions, domain.SubscriptionEdge{
		ID:           uuid.New(),
		SubscriberID: key.SubscriberID,
		ChannelID:    key.ChannelID,
		CreatedAt:    s.now(),
	})
	s.logger.Debug("edge toggled", "key", key.String(), "state", domain.EdgeCreated)
	return domain.EdgeCreated, nil
}

// IncrementViews увеличивает счётчик просмотров.
func (s *MemoryStore) IncrementViews(ctx context.Context, videoID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable(err, "increment views")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.videos {
		if s.videos[i].ID == videoID {
			s.videos[i].ViewCount++
			return nil
		}
	}
	return apperrors.NotFound("video %s not found", videoID)
}

// AppendWatchHistory добавляет видео в историю с семантикой множества.
func (s *MemoryStore) AppendWatchHistory(ctx context.Context, userID, videoID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable(err, "append watch history")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID != userID {
			continue
		}
		for _, id := range s.users[i].WatchHistory {
			if id == videoID {
				return nil
			}
		}
		s.users[i].WatchHistory = append(s.users[i].WatchHistory, videoID)
		return nil
	}
	return apperrors.NotFound("user %s not found", userID)
}

// AddVideo добавляет видео в конец плейлиста; повтор — Conflict.
func (s *MemoryStore) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable(err, "add playlist video")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playlist(playlistID)
	if p == nil {
		return apperrors.NotFound("playlist %s not found", playlistID)
	}
	if !s.hasVideo(videoID) {
		return apperrors.NotFound("video %s not found", videoID)
	}
	if p.Contains(videoID) {
		return apperrors.Conflict("video %s is already in playlist", videoID)
	}
	p.VideoIDs = append(p.VideoIDs, videoID)
	p.UpdatedAt = s.now()
	return nil
}

// RemoveVideo убирает видео из плейлиста; отсутствие видео в плейлисте — NotFound.
func (s *MemoryStore) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable(err, "remove playlist video")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playlist(playlistID)
	if p == nil {
		return apperrors.NotFound("playlist %s not found", playlistID)
	}
	for i, id := range p.VideoIDs {
		if id == videoID {
			p.VideoIDs = append(p.VideoIDs[:i:i], p.VideoIDs[i+1:]...)
			p.UpdatedAt = s.now()
			return nil
		}
	}
	return apperrors.NotFound("video %s is not in playlist", videoID)
}

// Методы наполнения. CRUD сущностей вне ядра, поэтому они нужны
// только для тестов и демонстрационного режима.

func (s *MemoryStore) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

func (s *MemoryStore) PutVideo(v domain.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, v)
}

func (s *MemoryStore) PutComment(c domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
}

func (s *MemoryStore) PutPost(p domain.ShortPost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
}

func (s *MemoryStore) PutPlaylist(p domain.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.VideoIDs = append([]uuid.UUID(nil), p.VideoIDs...)
	s.playlists = append(s.playlists, p)
}

func (s *MemoryStore) hasUser(id uuid.UUID) bool {
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) hasVideo(id uuid.UUID) bool {
	for _, v := range s.videos {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) playlist(id uuid.UUID) *domain.Playlist {
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			return &s.playlists[i]
		}
	}
	return nil
}
