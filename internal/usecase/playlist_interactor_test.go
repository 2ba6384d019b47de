package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

func TestPlaylistManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user("owner")
	v1 := f.video(owner, "one", 0, true)
	v2 := f.video(owner, "two", 0, true)
	pl := domain.Playlist{ID: uuid.New(), OwnerID: owner.ID, Name: "mine", CreatedAt: f.now()}
	f.store.PutPlaylist(pl)
	me := domain.Viewer(owner.ID)

	require.NoError(t, f.playlist.AddVideo(ctx, me, pl.ID, v2.ID))
	require.NoError(t, f.playlist.AddVideo(ctx, me, pl.ID, v1.ID))

	err := f.playlist.AddVideo(ctx, me, pl.ID, v1.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	detail, err := f.composer.ComposePlaylistDetail(ctx, pl.ID)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 2)
	assert.Equal(t, v2.ID, detail.Videos[0].ID)
	assert.Equal(t, v1.ID, detail.Videos[1].ID)

	require.NoError(t, f.playlist.RemoveVideo(ctx, me, pl.ID, v2.ID))
	err = f.playlist.RemoveVideo(ctx, me, pl.ID, v2.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = f.playlist.AddVideo(ctx, me, pl.ID, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestPlaylistManager_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, stranger := f.user("owner"), f.user("stranger")
	video := f.video(owner, "one", 0, true)
	pl := domain.Playlist{ID: uuid.New(), OwnerID: owner.ID, Name: "mine"}
	f.store.PutPlaylist(pl)

	err := f.playlist.AddVideo(ctx, domain.Viewer(stranger.ID), pl.ID, video.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidOperation))

	err = f.playlist.AddVideo(ctx, domain.Anonymous(), pl.ID, video.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	err = f.playlist.RemoveVideo(ctx, domain.Viewer(owner.ID), uuid.New(), video.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
