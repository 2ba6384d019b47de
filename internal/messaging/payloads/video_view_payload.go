package payloads

import "time"

// VideoViewPayload — событие просмотра видео зрителем,
// передаваемое через RabbitMQ для записи счётчика и истории просмотров.
type VideoViewPayload struct {
	VideoID  string    `json:"video_id"`
	ViewerID string    `json:"viewer_id"`
	ViewedAt time.Time `json:"viewed_at"`
}
