package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	authsvc "github.com/zenlit/backend/internal/services/auth"
	mediasvc "github.com/zenlit/backend/internal/services/media"
	"github.com/zenlit/backend/internal/transport/http/dto"
	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

const maxMediaUploadSize = 10 << 20 // 10 MiB

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) PostMediaUpload(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, func(ctx context.Context, userID uuid.UUID, name, contentType string, body io.Reader, size int64) (string, string, error) {
		return h.service.UploadPostMedia(ctx, userID, name, contentType, body, size)
	})
}

func (h *MediaHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, func(ctx context.Context, userID uuid.UUID, name, contentType string, body io.Reader, size int64) (string, string, error) {
		return h.service.UploadAvatar(ctx, userID, name, contentType, body, size)
	})
}

type uploadFunc func(ctx context.Context, userID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (string, string, error)

func (h *MediaHandler) upload(w http.ResponseWriter, r *http.Request, do uploadFunc) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMediaUploadSize)
	if err := r.ParseMultipartForm(maxMediaUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey, url, err := do(r.Context(), identity.UserID, header.Filename, contentType, file, header.Size)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UploadMediaResponse{
		ObjectKey: objectKey,
		URL:       url,
	})
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "media validation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "media operation failed")
	}
}
