package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/VideoTube/internal/database/storage"
	"github.com/GoArmGo/VideoTube/internal/domain"
	"github.com/GoArmGo/VideoTube/internal/usecase"
)

const viewerHeader = "X-User-ID"

type testEnv struct {
	store  *storage.MemoryStore
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore(logger)
	stats := &usecase.SideEffectStats{}
	recorder := usecase.NewDirectViewRecorder(store, time.Second, stats, logger)

	h := NewVideoTubeHandler(
		usecase.NewViewComposer(store, recorder, nil, logger),
		usecase.NewRelationshipToggler(store, store, logger),
		usecase.NewPlaylistManager(store, store, logger),
		stats,
		logger,
	)
	r := chi.NewRouter()
	r.Use(ViewerContext(viewerHeader, logger))
	h.Routes(r)
	return &testEnv{store: store, router: r}
}

type response struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

func (e *testEnv) do(t *testing.T, method, path, viewer string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if viewer != "" {
		req.Header.Set(viewerHeader, viewer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func (e *testEnv) user(name string) domain.User {
	u := domain.User{ID: uuid.New(), Username: name, PasswordHash: "hash", CreatedAt: time.Now()}
	e.store.PutUser(u)
	return u
}

func TestChannelProfileEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.user("alice"), env.user("bob")

	rec, body := env.do(t, http.MethodPost, "/subscriptions/toggle/"+alice.ID.String(), bob.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"created"}`, string(body.Data))

	rec, body = env.do(t, http.MethodGet, "/channels/alice", bob.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, body.Status)

	var profile domain.ChannelProfile
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.Equal(t, int64(1), profile.SubscriberCount)
	assert.True(t, profile.IsSubscribed)
	assert.NotContains(t, string(body.Data), "hash")

	rec, body = env.do(t, http.MethodGet, "/channels/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, body.Status)
}

func TestViewerHeader(t *testing.T) {
	env := newTestEnv(t)
	env.user("alice")

	rec, body := env.do(t, http.MethodGet, "/channels/alice", "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed viewer id", body.Message)

	rec, _ = env.do(t, http.MethodGet, "/likes/videos", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "liked feed needs a viewer")

	rec, _ = env.do(t, http.MethodGet, "/dashboard/stats", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user("alice")
	video := domain.Video{ID: uuid.New(), OwnerID: alice.ID, Title: "clip", IsPublished: true, CreatedAt: time.Now()}
	env.store.PutVideo(video)

	path := "/likes/toggle/video/" + video.ID.String()
	_, body := env.do(t, http.MethodPost, path, alice.ID.String())
	assert.JSONEq(t, `{"state":"created"}`, string(body.Data))
	_, body = env.do(t, http.MethodPost, path, alice.ID.String())
	assert.JSONEq(t, `{"state":"removed"}`, string(body.Data))

	rec, _ := env.do(t, http.MethodPost, "/likes/toggle/channel/"+video.ID.String(), alice.ID.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/likes/toggle/video/"+uuid.NewString(), alice.ID.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/subscriptions/toggle/"+alice.ID.String(), alice.ID.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self-subscription is an invalid operation")

	rec, body = env.do(t, http.MethodPost, "/subscriptions/toggle/oops", alice.ID.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, body.Errors)
}

func TestVideoFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user("alice")
	for i := 0; i < 3; i++ {
		env.store.PutVideo(domain.Video{
			ID: uuid.New(), OwnerID: alice.ID, Title: "clip", ViewCount: int64(i),
			IsPublished: true, CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
	}

	rec, body := env.do(t, http.MethodGet, "/videos?page=1&limit=2&sortBy=views&sortType=asc&userId="+alice.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items      []domain.VideoSummary `json:"items"`
		TotalCount int                   `json:"total_count"`
		TotalPages int                   `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(0), page.Items[0].ViewCount)

	rec, _ = env.do(t, http.MethodGet, "/videos?sortBy=likes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/videos?userId=123", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaylistEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.user("alice"), env.user("bob")
	video := domain.Video{ID: uuid.New(), OwnerID: alice.ID, Title: "clip", ThumbnailRef: "thumbs/clip.jpg", CreatedAt: time.Now()}
	env.store.PutVideo(video)
	pl := domain.Playlist{ID: uuid.New(), OwnerID: alice.ID, Name: "mine", CreatedAt: time.Now()}
	env.store.PutPlaylist(pl)
	path := "/playlists/" + pl.ID.String() + "/videos/" + video.ID.String()

	rec, _ := env.do(t, http.MethodPost, path, bob.ID.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, path, alice.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodPost, path, alice.ID.String())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	_, body := env.do(t, http.MethodGet, "/playlists/user/"+alice.ID.String(), "")
	var cards []domain.PlaylistCard
	require.NoError(t, json.Unmarshal(body.Data, &cards))
	require.Len(t, cards, 1)
	require.NotNil(t, cards[0].ThumbnailRef)
	assert.Equal(t, "thumbs/clip.jpg", *cards[0].ThumbnailRef)

	rec, _ = env.do(t, http.MethodDelete, path, alice.ID.String())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body.Data), `"side_effects"`)
}
