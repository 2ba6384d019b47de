package storage

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/database/postgres"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// Интеграционные тесты выполняются только при заданном TEST_DATABASE_URL.
func newPostgresStore(t *testing.T) (*PostgresStore, *sqlx.DB) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	require.NoError(t, postgres.ApplyMigrations(dsn, discardLogger()))

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db, discardLogger()), db
}

func insertUser(t *testing.T, db *sqlx.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'secret')`,
		id, name+"-"+id.String()[:8], id.String()+"@example.com")
	require.NoError(t, err)
	return id
}

func insertVideo(t *testing.T, db *sqlx.DB, owner uuid.UUID, title string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO videos (id, owner_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		id, owner, title, time.Now().UTC())
	require.NoError(t, err)
	return id
}

func TestPostgresStore_FindAndToggle(t *testing.T) {
	s, db := newPostgresStore(t)
	ctx := context.Background()

	owner := insertUser(t, db, "owner")
	viewer := insertUser(t, db, "viewer")
	video := insertVideo(t, db, owner, "Postgres internals")

	docs, err := s.Find(ctx, domain.CollectionVideos, pipeline.Where(
		pipeline.In("id", []string{video.String()}),
		pipeline.Text("INTERNALS", "title", "description"),
	))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, owner.String(), docs[0].String("owner_id"))

	key := domain.LikeKey{LikerID: viewer, TargetType: domain.TargetVideo, TargetID: video}
	state, err := s.ToggleLike(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.EdgeCreated, state)
	state, err = s.ToggleLike(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.EdgeRemoved, state)

	_, err = s.ToggleSubscription(ctx, domain.SubscriptionKey{SubscriberID: viewer, ChannelID: viewer})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidOperation))
}

func TestPostgresStore_ConcurrentToggleParity(t *testing.T) {
	s, db := newPostgresStore(t)
	ctx := context.Background()

	owner := insertUser(t, db, "owner")
	viewer := insertUser(t, db, "viewer")
	video := insertVideo(t, db, owner, "Race")
	key := domain.LikeKey{LikerID: viewer, TargetType: domain.TargetVideo, TargetID: video}

	const n = 9
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ToggleLike(ctx, key)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int
	require.NoError(t, db.Get(&count, `SELECT count(*) FROM likes WHERE liker_id = $1 AND target_id = $2`, viewer, video))
	assert.Equal(t, 1, count)
}

func TestPostgresStore_Activity(t *testing.T) {
	s, db := newPostgresStore(t)
	ctx := context.Background()

	owner := insertUser(t, db, "owner")
	video := insertVideo(t, db, owner, "History")

	require.NoError(t, s.IncrementViews(ctx, video))
	require.NoError(t, s.AppendWatchHistory(ctx, owner, video))
	require.NoError(t, s.AppendWatchHistory(ctx, owner, video))

	users, err := s.Find(ctx, domain.CollectionUsers, pipeline.Where(pipeline.Eq("id", owner)))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{video.String()}, users[0].Strings("watch_history"))

	assert.True(t, apperrors.Is(s.IncrementViews(ctx, uuid.New()), apperrors.KindNotFound))
	assert.True(t, apperrors.Is(s.AppendWatchHistory(ctx, uuid.New(), video), apperrors.KindNotFound))
}
