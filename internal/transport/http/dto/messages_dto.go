package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Body       string    `json:"body"`
}

type MessageResponse struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   uuid.UUID  `json:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

type ConversationResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
