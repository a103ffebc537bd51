package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

const (
	signedURLTTL  = 5 * time.Minute
	maxUploadSize = 10 << 20
)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	storage ObjectStorage
	now     func() time.Time
}

func NewService(storage ObjectStorage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

// UploadPostMedia stores a post attachment and returns its object key plus a
// short-lived signed URL for immediate rendering.
func (s *Service) UploadPostMedia(ctx context.Context, userID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (string, string, error) {
	return s.upload(ctx, userID, "posts", fileName, contentType, body, size)
}

// UploadAvatar stores a profile image.
func (s *Service) UploadAvatar(ctx context.Context, userID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (string, string, error) {
	return s.upload(ctx, userID, "avatars", fileName, contentType, body, size)
}

func (s *Service) upload(ctx context.Context, userID uuid.UUID, kind, fileName, contentType string, body io.Reader, size int64) (string, string, error) {
	if userID == uuid.Nil || body == nil || size <= 0 || size > maxUploadSize {
		return "", "", ErrValidation
	}
	if s.storage == nil {
		return "", "", fmt.Errorf("media storage is not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", "", fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(userID, kind, fileName, s.now())
	if err != nil {
		return "", "", fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}

	signedURL, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return "", "", fmt.Errorf("presign media url: %w", err)
	}

	return objectKey, signedURL, nil
}

// SignedURL resolves a stored object key into a short-lived fetch URL.
func (s *Service) SignedURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", ErrValidation
	}
	if s.storage == nil {
		return "", fmt.Errorf("media storage is not configured")
	}

	signedURL, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign media url: %w", err)
	}
	return signedURL, nil
}

func (s *Service) Remove(ctx context.Context, objectKey string) error {
	if s.storage == nil {
		return fmt.Errorf("media storage is not configured")
	}
	if err := s.storage.Delete(ctx, objectKey); err != nil {
		return fmt.Errorf("delete media object: %w", err)
	}
	return nil
}

func buildObjectKey(userID uuid.UUID, kind, fileName string, at time.Time) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := at.UTC().Format("20060102T150405")
	return fmt.Sprintf("users/%s/%s/%s_%s%s", userID, kind, stamp, hex.EncodeToString(rnd), ext), nil
}
