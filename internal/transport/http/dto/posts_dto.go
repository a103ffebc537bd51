package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Caption  string `json:"caption"`
	MediaKey string `json:"media_key"`
}

type PostResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Caption      string    `json:"caption"`
	MediaURL     string    `json:"media_url,omitempty"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

type FeedResponse struct {
	Posts []PostResponse `json:"posts"`
}
