package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
	authsvc "github.com/zenlit/backend/internal/services/auth"
	profilesvc "github.com/zenlit/backend/internal/services/profiles"
	"github.com/zenlit/backend/internal/transport/http/dto"
	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Update(r.Context(), identity.UserID, profilesvc.UpdateInput{
		DisplayName:  req.DisplayName,
		Username:     req.Username,
		Bio:          req.Bio,
		AvatarURL:    req.AvatarURL,
		InstagramURL: req.InstagramURL,
		TwitterURL:   req.TwitterURL,
		LinkedInURL:  req.LinkedInURL,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func profileResponse(profile model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:                profile.UserID,
		DisplayName:           profile.DisplayName,
		Username:              profile.Username,
		Bio:                   profile.Bio,
		AvatarURL:             profile.AvatarURL,
		InstagramURL:          profile.InstagramURL,
		TwitterURL:            profile.TwitterURL,
		LinkedInURL:           profile.LinkedInURL,
		Latitude:              profile.Latitude,
		Longitude:             profile.Longitude,
		LocationLastUpdatedAt: profile.LocationLastUpdatedAt,
		CreatedAt:             profile.CreatedAt,
	}
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
	case errors.Is(err, profilesvc.ErrNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "PROFILE_NOT_FOUND", Message: "profile not found"})
	default:
		writeInternal(w, "INTERNAL_ERROR", "profile operation failed")
	}
}
