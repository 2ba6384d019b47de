package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/VideoTube/internal/domain"
	"github.com/GoArmGo/VideoTube/internal/messaging/payloads"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []payloads.VideoViewPayload
	err    error
}

func (p *recordingPublisher) PublishViewEvent(_ context.Context, payload payloads.VideoViewPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, payload)
	return nil
}

func TestQueueViewRecorder(t *testing.T) {
	pub := &recordingPublisher{}
	stats := &SideEffectStats{}
	rec := NewQueueViewRecorder(pub, time.Second, stats, discardLogger())
	videoID, viewerID := uuid.New(), uuid.New()

	rec.RecordView(context.Background(), videoID, domain.Anonymous())
	assert.Empty(t, pub.events)

	rec.RecordView(context.Background(), videoID, domain.Viewer(viewerID))
	require.Len(t, pub.events, 1)
	assert.Equal(t, videoID.String(), pub.events[0].VideoID)
	assert.Equal(t, viewerID.String(), pub.events[0].ViewerID)
	assert.False(t, pub.events[0].ViewedAt.IsZero())

	pub.err = errors.New("channel closed")
	rec.RecordView(context.Background(), videoID, domain.Viewer(viewerID))
	assert.Equal(t, int64(1), stats.Snapshot().PublishFailures)
}

func TestDirectViewRecorder_HandleViewEvent(t *testing.T) {
	f := newFixture(t)
	owner, viewer := f.user("owner"), f.user("viewer")
	video := f.video(owner, "clip", 0, true)
	rec := NewDirectViewRecorder(f.store, time.Second, f.stats, discardLogger())

	event := payloads.VideoViewPayload{VideoID: video.ID.String(), ViewerID: viewer.ID.String(), ViewedAt: time.Now()}
	require.NoError(t, rec.HandleViewEvent(context.Background(), event))
	require.NoError(t, rec.HandleViewEvent(context.Background(), event))
	assert.Equal(t, int64(2), viewCount(t, f, video.ID))

	history, err := f.composer.ComposeWatchHistory(context.Background(), domain.Viewer(viewer.ID))
	require.NoError(t, err)
	assert.Len(t, history, 1)

	err = rec.HandleViewEvent(context.Background(), payloads.VideoViewPayload{VideoID: "nope", ViewerID: viewer.ID.String()})
	assert.Error(t, err)

	err = rec.HandleViewEvent(context.Background(), payloads.VideoViewPayload{VideoID: uuid.NewString(), ViewerID: viewer.ID.String()})
	assert.Error(t, err)
	assert.Equal(t, int64(1), f.stats.Snapshot().ViewIncrementFailures)
}
