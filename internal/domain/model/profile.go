package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public face of a user. Latitude and longitude are either
// both set or both null: sharing is on or off, never half-written.
type Profile struct {
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
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NearbyUser is the fixed projection returned by radar queries. DistanceKM is
// zero for bucket matches and a real haversine distance on the radius path.
type NearbyUser struct {
	UserID       uuid.UUID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	InstagramURL string    `json:"instagram_url"`
	TwitterURL   string    `json:"twitter_url"`
	LinkedInURL  string    `json:"linkedin_url"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	DistanceKM   float64   `json:"distance_km"`
}
