package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStorage struct {
	objects map[string]string

	ensureCalls int
	presignErr  error
	deleted     []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]string)}
}

func (f *fakeStorage) EnsureBucket(_ context.Context) error {
	f.ensureCalls++
	return nil
}

func (f *fakeStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if _, err := io.ReadAll(body); err != nil {
		return err
	}
	f.objects[key] = contentType
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func TestUploadPostMedia(t *testing.T) {
	storage := newFakeStorage()
	svc := NewService(storage)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	userID := uuid.New()
	body := strings.NewReader("image-bytes")

	key, signedURL, err := svc.UploadPostMedia(context.Background(), userID, "shot.JPG", "image/jpeg", body, int64(body.Len()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !strings.HasPrefix(key, "users/"+userID.String()+"/posts/20240601T120000_") {
		t.Fatalf("unexpected object key %q", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("extension not normalized: %q", key)
	}
	if storage.objects[key] != "image/jpeg" {
		t.Fatalf("object not stored with content type, got %q", storage.objects[key])
	}
	if signedURL != "https://cdn.test/"+key {
		t.Fatalf("unexpected signed url %q", signedURL)
	}
	if storage.ensureCalls != 1 {
		t.Fatalf("bucket not ensured before upload")
	}
}

func TestUploadRejectsInvalidInput(t *testing.T) {
	svc := NewService(newFakeStorage())
	userID := uuid.New()

	cases := []struct {
		name string
		id   uuid.UUID
		body io.Reader
		size int64
	}{
		{name: "nil user", id: uuid.Nil, body: strings.NewReader("x"), size: 1},
		{name: "nil body", id: userID, body: nil, size: 1},
		{name: "zero size", id: userID, body: strings.NewReader("x"), size: 0},
		{name: "oversized", id: userID, body: strings.NewReader("x"), size: maxUploadSize + 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.UploadPostMedia(context.Background(), tc.id, "a.png", "image/png", tc.body, tc.size); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUploadCleansUpOnPresignFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.presignErr = errors.New("presign down")
	svc := NewService(storage)

	body := strings.NewReader("image-bytes")
	if _, _, err := svc.UploadAvatar(context.Background(), uuid.New(), "me.png", "image/png", body, int64(body.Len())); err == nil {
		t.Fatalf("expected presign failure")
	}

	if len(storage.deleted) != 1 {
		t.Fatalf("orphaned object was not deleted, deletions=%v", storage.deleted)
	}
	if len(storage.objects) != 0 {
		t.Fatalf("object store should be empty, got %d objects", len(storage.objects))
	}
}
