package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

func TestBuildWhere(t *testing.T) {
	videos := collections[domain.CollectionVideos].table
	owner := uuid.New()

	clause, args, none, err := buildWhere(videos, pipeline.Where(
		pipeline.Eq("is_published", true),
		pipeline.Eq("owner_id", owner.String()),
		pipeline.Text("50%_off", "title", "description"),
	))
	require.NoError(t, err)
	assert.False(t, none)
	assert.Equal(t, " WHERE is_published = $1 AND owner_id = $2 AND (title ILIKE $3 OR description ILIKE $3)", clause)
	require.Len(t, args, 3)
	assert.Equal(t, owner, args[1])
	assert.Equal(t, `%50\%\_off%`, args[2])
}

func TestBuildWhere_InOnUUIDColumn(t *testing.T) {
	videos := collections[domain.CollectionVideos].table

	clause, args, none, err := buildWhere(videos, pipeline.Where(
		pipeline.In("id", []string{uuid.NewString(), "garbage"}),
	))
	require.NoError(t, err)
	assert.False(t, none)
	assert.Equal(t, " WHERE id = ANY($1::uuid[])", clause)
	assert.Len(t, args, 1)

	_, _, none, err = buildWhere(videos, pipeline.Where(pipeline.In("id", []string{"garbage"})))
	require.NoError(t, err)
	assert.True(t, none)

	_, _, none, err = buildWhere(videos, pipeline.Where(pipeline.Eq("id", "garbage")))
	require.NoError(t, err)
	assert.True(t, none)
}

func TestBuildWhere_EmptyAndUnknown(t *testing.T) {
	users := collections[domain.CollectionUsers].table

	clause, args, none, err := buildWhere(users, nil)
	require.NoError(t, err)
	assert.False(t, none)
	assert.Empty(t, clause)
	assert.Empty(t, args)

	_, _, _, err = buildWhere(users, pipeline.Where(pipeline.Eq("is_admin", true)))
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
	assert.ErrorIs(t, err, errUnknownField)
}

func TestSelectQuery(t *testing.T) {
	subs := collections[domain.CollectionSubscriptions].table
	assert.Equal(t, "SELECT id, subscriber_id, channel_id, created_at FROM subscriptions", subs.selectQuery())
}
