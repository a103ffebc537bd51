package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileUpdateRequest struct {
	DisplayName  *string `json:"display_name"`
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	AvatarURL    *string `json:"avatar_url"`
	InstagramURL *string `json:"instagram_url"`
	TwitterURL   *string `json:"twitter_url"`
	LinkedInURL  *string `json:"linkedin_url"`
}

type ProfileResponse struct {
	UserID                uuid.UUID  `json:"user_id"`
	DisplayName           string     `json:"display_name"`
	Username              string     `json:"username"`
	Bio                   string     `json:"bio"`
	AvatarURL             string     `json:"avatar_url"`
	InstagramURL          string     `json:"instagram_url"`
	TwitterURL            string     `json:"twitter_url"`
	LinkedInURL           string     `json:"linkedin_url"`
	Latitude              *float64   `json:"latitude"`
	Longitude             *float64   `json:"longitude"`
	LocationLastUpdatedAt *time.Time `json:"location_last_updated_at"`
	CreatedAt             time.Time  `json:"created_at"`
}
