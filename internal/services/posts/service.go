package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
	locsvc "github.com/zenlit/backend/internal/services/location"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrLocationUnknown = errors.New("location not shared")
)

const maxCaptionLength = 1000

type PostStore interface {
	Insert(ctx context.Context, post model.Post) error
	ListByBucket(ctx context.Context, lat, lon float64, limit int) ([]model.Post, error)
}

type ProfileReader interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Profile, error)
}

// MediaSigner turns stored object keys into short-lived fetch URLs for the
// feed response.
type MediaSigner interface {
	SignedURL(ctx context.Context, objectKey string) (string, error)
}

type Service struct {
	store    PostStore
	profiles ProfileReader
	signer   MediaSigner
	pageSize int
	now      func() time.Time
}

func NewService(store PostStore, profiles ProfileReader, signer MediaSigner, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}

	return &Service{
		store:    store,
		profiles: profiles,
		signer:   signer,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, caption, mediaKey string) (model.Post, error) {
	if s.store == nil {
		return model.Post{}, fmt.Errorf("post store is nil")
	}
	if userID == uuid.Nil {
		return model.Post{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	caption = strings.TrimSpace(caption)
	mediaKey = strings.TrimSpace(mediaKey)
	if caption == "" && mediaKey == "" {
		return model.Post{}, fmt.Errorf("post needs a caption or media: %w", ErrValidation)
	}
	if len(caption) > maxCaptionLength {
		return model.Post{}, fmt.Errorf("caption exceeds %d characters: %w", maxCaptionLength, ErrValidation)
	}

	post := model.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Caption:   caption,
		MediaKey:  mediaKey,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, post); err != nil {
		return model.Post{}, fmt.Errorf("insert post: %w", err)
	}

	if err := s.attachMediaURL(ctx, &post); err != nil {
		return model.Post{}, err
	}

	return post, nil
}

// ListNearby returns the newest posts from authors whose published
// coordinates share the caller's bucket. The caller must be sharing; the
// feed is anchored to their own published position.
func (s *Service) ListNearby(ctx context.Context, userID uuid.UUID) ([]model.Post, error) {
	if s.store == nil || s.profiles == nil {
		return nil, fmt.Errorf("posts dependencies are not configured")
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get caller profile: %w", err)
	}
	if profile.Latitude == nil || profile.Longitude == nil {
		return nil, ErrLocationUnknown
	}

	lat := locsvc.RoundCoord(*profile.Latitude)
	lon := locsvc.RoundCoord(*profile.Longitude)

	posts, err := s.store.ListByBucket(ctx, lat, lon, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts by bucket: %w", err)
	}

	for i := range posts {
		if err := s.attachMediaURL(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}

	return posts, nil
}

func (s *Service) attachMediaURL(ctx context.Context, post *model.Post) error {
	if post.MediaKey == "" || s.signer == nil {
		return nil
	}

	signedURL, err := s.signer.SignedURL(ctx, post.MediaKey)
	if err != nil {
		return fmt.Errorf("sign post media url: %w", err)
	}
	post.MediaURL = signedURL
	return nil
}
