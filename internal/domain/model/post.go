package model

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Caption   string    `json:"caption"`
	MediaKey  string    `json:"-"`
	MediaURL  string    `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	AuthorName   string `json:"author_name"`
	AuthorAvatar string `json:"author_avatar"`
}
