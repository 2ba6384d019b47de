package storage

import (
	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
	"github.com/GoArmGo/VideoTube/internal/domain"
)

// Преобразование сущностей в документы конвейера. Общее для всех реализаций
// хранилища, чтобы имена полей совпадали с именами колонок.

func userDoc(u domain.User) pipeline.Doc {
	return pipeline.Doc{
		"id":            u.ID.String(),
		"username":      u.Username,
		"email":         u.Email,
		"full_name":     u.FullName,
		"avatar_ref":    u.AvatarRef,
		"cover_ref":     u.CoverRef,
		"watch_history": idStrings(u.WatchHistory),
		"password_hash": u.PasswordHash,
		"refresh_token": u.RefreshToken,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}

func videoDoc(v domain.Video) pipeline.Doc {
	return pipeline.Doc{
		"id":               v.ID.String(),
		"owner_id":         v.OwnerID.String(),
		"title":            v.Title,
		"description":      v.Description,
		"media_ref":        v.MediaRef,
		"thumbnail_ref":    v.ThumbnailRef,
		"duration_seconds": v.DurationSeconds,
		"view_count":       v.ViewCount,
		"is_published":     v.IsPublished,
		"created_at":       v.CreatedAt,
		"updated_at":       v.UpdatedAt,
	}
}

func commentDoc(c domain.Comment) pipeline.Doc {
	return pipeline.Doc{
		"id":         c.ID.String(),
		"video_id":   c.VideoID.String(),
		"owner_id":   c.OwnerID.String(),
		"content":    c.Content,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

func postDoc(p domain.ShortPost) pipeline.Doc {
	return pipeline.Doc{
		"id":         p.ID.String(),
		"owner_id":   p.OwnerID.String(),
		"content":    p.Content,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func likeDoc(l domain.LikeEdge) pipeline.Doc {
	return pipeline.Doc{
		"id":          l.ID.String(),
		"liker_id":    l.LikerID.String(),
		"target_type": string(l.TargetType),
		"target_id":   l.TargetID.String(),
		"created_at":  l.CreatedAt,
	}
}

func subscriptionDoc(s domain.SubscriptionEdge) pipeline.Doc {
	return pipeline.Doc{
		"id":            s.ID.String(),
		"subscriber_id": s.SubscriberID.String(),
		"channel_id":    s.ChannelID.String(),
		"created_at":    s.CreatedAt,
	}
}

func playlistDoc(p domain.Playlist) pipeline.Doc {
	return pipeline.Doc{
		"id":          p.ID.String(),
		"owner_id":    p.OwnerID.String(),
		"name":        p.Name,
		"description": p.Description,
		"video_ids":   idStrings(p.VideoIDs),
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
