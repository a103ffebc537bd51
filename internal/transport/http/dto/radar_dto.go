package dto

import "github.com/google/uuid"

type NearbyUserResponse struct {
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

type RadarResponse struct {
	Users []NearbyUserResponse `json:"users"`
}
