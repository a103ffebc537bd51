package handlers

import (
	"errors"
	"net/http"

	"github.com/zenlit/backend/internal/domain/model"
	authsvc "github.com/zenlit/backend/internal/services/auth"
	postsvc "github.com/zenlit/backend/internal/services/posts"
	"github.com/zenlit/backend/internal/transport/http/dto"
	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

type PostsHandler struct {
	service *postsvc.Service
}

func NewPostsHandler(service *postsvc.Service) *PostsHandler {
	return &PostsHandler{service: service}
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	var req dto.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), identity.UserID, req.Caption, req.MediaKey)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, postResponse(post))
}

// Feed lists the newest posts from the caller's coordinate bucket.
func (h *PostsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	posts, err := h.service.ListNearby(r.Context(), identity.UserID)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	res := dto.FeedResponse{Posts: make([]dto.PostResponse, 0, len(posts))}
	for _, post := range posts {
		res.Posts = append(res.Posts, postResponse(post))
	}

	httperrors.Write(w, http.StatusOK, res)
}

func postResponse(post model.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:           post.ID,
		UserID:       post.UserID,
		Caption:      post.Caption,
		MediaURL:     post.MediaURL,
		AuthorName:   post.AuthorName,
		AuthorAvatar: post.AuthorAvatar,
		CreatedAt:    post.CreatedAt,
	}
}

func handlePostsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "post validation failed")
	case errors.Is(err, postsvc.ErrLocationUnknown):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "LOCATION_DISABLED", Message: "share your location to see the nearby feed"})
	default:
		writeInternal(w, "INTERNAL_ERROR", "posts operation failed")
	}
}
