package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/domain"
	"github.com/GoArmGo/VideoTube/internal/usecase"
)

// VideoTubeHandler — обработчик HTTP-запросов к read-моделям и переключателям.
type VideoTubeHandler struct {
	composer  usecase.ViewComposer
	toggler   usecase.RelationshipToggler
	playlists usecase.PlaylistManager
	stats     *usecase.SideEffectStats
	logger    *slog.Logger
}

// NewVideoTubeHandler создаёт новый экземпляр VideoTubeHandler.
func NewVideoTubeHandler(
	composer usecase.ViewComposer,
	toggler usecase.RelationshipToggler,
	playlists usecase.PlaylistManager,
	stats *usecase.SideEffectStats,
	logger *slog.Logger,
) *VideoTubeHandler {
	return &VideoTubeHandler{
		composer:  composer,
		toggler:   toggler,
		playlists: playlists,
		stats:     stats,
		logger:    logger,
	}
}

// Routes регистрирует маршруты API на роутере.
func (h *VideoTubeHandler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Get("/channels/{username}", h.GetChannelProfile)

	r.Get("/videos", h.GetVideoFeed)
	r.Get("/videos/{videoId}", h.GetVideoDetail)

	r.Get("/playlists/user/{userId}", h.GetUserPlaylists)
	r.Get("/playlists/{playlistId}", h.GetPlaylistDetail)
	r.Post("/playlists/{playlistId}/videos/{videoId}", h.AddPlaylistVideo)
	r.Delete("/playlists/{playlistId}/videos/{videoId}", h.RemovePlaylistVideo)

	r.Get("/likes/videos", h.GetLikedVideos)
	r.Post("/likes/toggle/{targetType}/{targetId}", h.ToggleLike)

	r.Get("/subscriptions/channel/{channelId}/subscribers", h.GetSubscribers)
	r.Get("/subscriptions/subscriber/{subscriberId}/channels", h.GetSubscribedChannels)
	r.Post("/subscriptions/toggle/{channelId}", h.ToggleSubscription)

	r.Get("/comments/{videoId}", h.GetVideoComments)
	r.Get("/dashboard/stats", h.GetChannelStats)
	r.Get("/dashboard/videos", h.GetChannelVideos)
	r.Get("/posts/user/{userId}", h.GetUserPosts)
	r.Get("/users/history", h.GetWatchHistory)
}

// Health отдаёт признак жизни процесса и счётчики неудачных побочных записей.
func (h *VideoTubeHandler) Health(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"status": "ok"}
	if h.stats != nil {
		data["side_effects"] = h.stats.Snapshot()
	}
	respondOK(w, data, "healthy", h.logger)
}

func (h *VideoTubeHandler) GetChannelProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.composer.ComposeChannelProfile(r.Context(), username, viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, profile, "channel fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetVideoFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortBy, err := domain.ParseSortField(q.Get("sortBy"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	sortDesc, err := domain.ParseSortDesc(q.Get("sortType"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	query := domain.VideoFeedQuery{
		Query:    q.Get("query"),
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}
	if raw := q.Get("userId"); raw != "" {
		if query.OwnerID, err = domain.ParseID("userId", raw); err != nil {
			respondWithError(w, err, h.logger)
			return
		}
	}

	h.logger.Debug("fetching video feed",
		"query", query.Query,
		"owner_id", query.OwnerID,
		"sort_by", query.SortBy,
		"page", query.Page,
		"limit", query.Limit,
	)

	page, err := h.composer.ComposeVideoFeed(r.Context(), query)
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, page, "videos fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetVideoDetail(w http.ResponseWriter, r *http.Request) {
	videoID, err := domain.ParseID("videoId", chi.URLParam(r, "videoId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	video, err := h.composer.ComposeVideoDetail(r.Context(), videoID, viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, video, "video fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetUserPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseID("userId", chi.URLParam(r, "userId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	playlists, err := h.composer.ComposeUserPlaylists(r.Context(), userID)
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, playlists, "playlists fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetPlaylistDetail(w http.ResponseWriter, r *http.Request) {
	playlistID, err := domain.ParseID("playlistId", chi.URLParam(r, "playlistId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	playlist, err := h.composer.ComposePlaylistDetail(r.Context(), playlistID)
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, playlist, "playlist fetched successfully", h.logger)
}

func (h *VideoTubeHandler) AddPlaylistVideo(w http.ResponseWriter, r *http.Request) {
	h.editPlaylist(w, r, h.playlists.AddVideo, "video added to playlist")
}

func (h *VideoTubeHandler) RemovePlaylistVideo(w http.ResponseWriter, r *http.Request) {
	h.editPlaylist(w, r, h.playlists.RemoveVideo, "video removed from playlist")
}

func (h *VideoTubeHandler) editPlaylist(
	w http.ResponseWriter,
	r *http.Request,
	edit func(ctx context.Context, viewer domain.ViewerID, playlistID, videoID uuid.UUID) error,
	message string,
) {
	playlistID, err := domain.ParseID("playlistId", chi.URLParam(r, "playlistId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	videoID, err := domain.ParseID("videoId", chi.URLParam(r, "videoId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	if err := edit(r.Context(), viewerFrom(r.Context()), playlistID, videoID); err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, map[string]string{"playlist_id": playlistID.String(), "video_id": videoID.String()}, message, h.logger)
}

func (h *VideoTubeHandler) GetLikedVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.composer.ComposeLikedVideosFeed(r.Context(), viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, videos, "liked videos fetched successfully", h.logger)
}

func (h *VideoTubeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	targetType, err := domain.ParseTargetType(chi.URLParam(r, "targetType"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	targetID, err := domain.ParseID("targetId", chi.URLParam(r, "targetId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	res, err := h.toggler.ToggleLike(r.Context(), viewerFrom(r.Context()), targetType, targetID)
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, res, "like toggled", h.logger)
}

func (h *VideoTubeHandler) GetSubscribers(w http.ResponseWriter, r *http.Request) {
	channelID, err := domain.ParseID("channelId", chi.URLParam(r, "channelId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	subscribers, err := h.composer.ComposeSubscriberList(r.Context(), channelID, viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, subscribers, "subscribers fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := domain.ParseID("subscriberId", chi.URLParam(r, "subscriberId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	channels, err := h.composer.ComposeSubscribedChannelList(r.Context(), subscriberID)
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, channels, "subscribed channels fetched successfully", h.logger)
}

func (h *VideoTubeHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	channelID, err := domain.ParseID("channelId", chi.URLParam(r, "channelId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	res, err := h.toggler.ToggleSubscription(r.Context(), viewerFrom(r.Context()), channelID)
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, res, "subscription toggled", h.logger)
}

func (h *VideoTubeHandler) GetVideoComments(w http.ResponseWriter, r *http.Request) {
	videoID, err := domain.ParseID("videoId", chi.URLParam(r, "videoId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	comments, err := h.composer.ComposeVideoComments(r.Context(), videoID,
		queryInt(r, "page"), queryInt(r, "limit"), viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, comments, "comments fetched successfully", h.logger)
}

// GetChannelStats отдаёт статистику канала текущего зрителя.
func (h *VideoTubeHandler) GetChannelStats(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	stats, err := h.composer.ComposeChannelStats(r.Context(), viewer.ID())
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, stats, "channel stats fetched successfully", h.logger)
}

// GetChannelVideos отдаёт все видео канала текущего зрителя.
func (h *VideoTubeHandler) GetChannelVideos(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	videos, err := h.composer.ComposeChannelVideos(r.Context(), viewer.ID())
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, videos, "channel videos fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseID("userId", chi.URLParam(r, "userId"))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}

	posts, err := h.composer.ComposeUserPosts(r.Context(), userID, viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, posts, "posts fetched successfully", h.logger)
}

func (h *VideoTubeHandler) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.composer.ComposeWatchHistory(r.Context(), viewerFrom(r.Context()))
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondOK(w, history, "watch history fetched successfully", h.logger)
}

func (h *VideoTubeHandler) requireViewer(w http.ResponseWriter, r *http.Request) (domain.ViewerID, bool) {
	viewer := viewerFrom(r.Context())
	if !viewer.Present() {
		respondWithError(w, apperrors.Validation("viewer is required"), h.logger)
		return viewer, false
	}
	return viewer, true
}
