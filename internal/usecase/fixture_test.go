package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/database/storage"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t        *testing.T
	store    *storage.MemoryStore
	stats    *SideEffectStats
	composer ViewComposer
	toggler  RelationshipToggler
	playlist PlaylistManager
	tick     atomic.Int64
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, stats: &SideEffectStats{}}
	logger := discardLogger()
	f.store = storage.NewMemoryStore(logger, storage.WithClock(f.now))
	recorder := NewDirectViewRecorder(f.store, time.Second, f.stats, logger)
	f.composer = NewViewComposer(f.store, recorder, nil, logger)
	f.toggler = NewRelationshipToggler(f.store, f.store, logger)
	f.playlist = NewPlaylistManager(f.store, f.store, logger)
	return f
}

// now выдаёт строго возрастающее время, чтобы порядок created_at был детерминирован.
func (f *fixture) now() time.Time {
	return base.Add(time.Duration(f.tick.Add(1)) * time.Minute)
}

func (f *fixture) user(name string) domain.User {
	u := domain.User{
		ID:           uuid.New(),
		Username:     name,
		Email:        name + "@example.com",
		FullName:     "User " + name,
		AvatarRef:    "avatars/" + name + ".png",
		PasswordHash: "hash-secret-" + name,
		RefreshToken: "refresh-secret-" + name,
		CreatedAt:    f.now(),
	}
	f.store.PutUser(u)
	return u
}

func (f *fixture) video(owner domain.User, title string, views int64, published bool) domain.Video {
	v := domain.Video{
		ID:              uuid.New(),
		OwnerID:         owner.ID,
		Title:           title,
		Description:     "about " + title,
		MediaRef:        "videos/" + title + ".mp4",
		ThumbnailRef:    "thumbs/" + title + ".jpg",
		DurationSeconds: 60,
		ViewCount:       views,
		IsPublished:     published,
		CreatedAt:       f.now(),
	}
	f.store.PutVideo(v)
	return v
}

func (f *fixture) like(liker domain.User, target domain.TargetType, id uuid.UUID) {
	f.t.Helper()
	res, err := f.toggler.ToggleLike(context.Background(), domain.Viewer(liker.ID), target, id)
	if err != nil || res.State != domain.EdgeCreated {
		f.t.Fatalf("like %s: state=%s err=%v", id, res.State, err)
	}
}

func (f *fixture) subscribe(subscriber, channel domain.User) {
	f.t.Helper()
	res, err := f.toggler.ToggleSubscription(context.Background(), domain.Viewer(subscriber.ID), channel.ID)
	if err != nil || res.State != domain.EdgeCreated {
		f.t.Fatalf("subscribe %s -> %s: state=%s err=%v", subscriber.Username, channel.Username, res.State, err)
	}
}
