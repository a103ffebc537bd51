package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/zenlit/backend/internal/domain/model"
	authsvc "github.com/zenlit/backend/internal/services/auth"
	locsvc "github.com/zenlit/backend/internal/services/location"
	radarsvc "github.com/zenlit/backend/internal/services/radar"
	"github.com/zenlit/backend/internal/transport/http/dto"
	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

type RadarHandler struct {
	service *radarsvc.Service
}

func NewRadarHandler(service *radarsvc.Service) *RadarHandler {
	return &RadarHandler{service: service}
}

// Bucket returns users in the caller's coordinate bucket. The query point
// comes from the request, typically the caller's own current position.
func (h *RadarHandler) Bucket(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RADAR_SERVICE_UNAVAILABLE", "radar service is unavailable")
		return
	}

	lat, lon, ok := queryCoordinates(w, r)
	if !ok {
		return
	}

	users, err := h.service.FindBucketMatches(r.Context(), identity.UserID, lat, lon)
	if err != nil {
		handleRadarError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, radarResponse(users))
}

// Nearby returns users within a kilometre radius, nearest first.
func (h *RadarHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RADAR_SERVICE_UNAVAILABLE", "radar service is unavailable")
		return
	}

	lat, lon, ok := queryCoordinates(w, r)
	if !ok {
		return
	}

	radiusKM := queryFloat(r, "radius_km", 0)
	limit := int(queryFloat(r, "limit", 0))

	users, err := h.service.FindNearby(r.Context(), identity.UserID, lat, lon, radiusKM, limit)
	if err != nil {
		handleRadarError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, radarResponse(users))
}

func queryCoordinates(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	latRaw := r.URL.Query().Get("lat")
	lonRaw := r.URL.Query().Get("lon")
	if latRaw == "" || lonRaw == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "lat and lon query params are required")
		return 0, 0, false
	}

	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if latErr != nil || lonErr != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "lat and lon must be numbers")
		return 0, 0, false
	}

	return lat, lon, true
}

func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func radarResponse(users []model.NearbyUser) dto.RadarResponse {
	res := dto.RadarResponse{Users: make([]dto.NearbyUserResponse, 0, len(users))}
	for _, u := range users {
		res.Users = append(res.Users, dto.NearbyUserResponse{
			UserID:       u.UserID,
			DisplayName:  u.DisplayName,
			Username:     u.Username,
			Bio:          u.Bio,
			AvatarURL:    u.AvatarURL,
			InstagramURL: u.InstagramURL,
			TwitterURL:   u.TwitterURL,
			LinkedInURL:  u.LinkedInURL,
			Latitude:     u.Latitude,
			Longitude:    u.Longitude,
			DistanceKM:   u.DistanceKM,
		})
	}
	return res
}

func handleRadarError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, locsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid lat/lon")
	default:
		writeInternal(w, "INTERNAL_ERROR", "radar query failed")
	}
}
