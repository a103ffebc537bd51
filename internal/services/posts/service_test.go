package posts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
)

type fakePostStore struct {
	posts []model.Post

	lastLat   float64
	lastLon   float64
	lastLimit int
}

func (s *fakePostStore) Insert(_ context.Context, post model.Post) error {
	s.posts = append(s.posts, post)
	return nil
}

func (s *fakePostStore) ListByBucket(_ context.Context, lat, lon float64, limit int) ([]model.Post, error) {
	s.lastLat = lat
	s.lastLon = lon
	s.lastLimit = limit
	return s.posts, nil
}

type fakeProfileReader struct {
	profiles map[uuid.UUID]model.Profile
}

func (r *fakeProfileReader) Get(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return model.Profile{}, errors.New("profile not found")
	}
	return profile, nil
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(_ context.Context, objectKey string) (string, error) {
	return "https://cdn.test/" + objectKey, nil
}

func TestCreateValidatesAndSignsMedia(t *testing.T) {
	store := &fakePostStore{}
	svc := NewService(store, &fakeProfileReader{}, fakeSigner{}, 20)

	userID := uuid.New()

	post, err := svc.Create(context.Background(), userID, "  hello  ", "users/x/posts/a.jpg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Caption != "hello" {
		t.Fatalf("caption not trimmed: %q", post.Caption)
	}
	if post.MediaURL != "https://cdn.test/users/x/posts/a.jpg" {
		t.Fatalf("media url not signed: %q", post.MediaURL)
	}
	if len(store.posts) != 1 {
		t.Fatalf("post was not stored")
	}

	if _, err := svc.Create(context.Background(), userID, "   ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty post should fail validation, got %v", err)
	}
	if _, err := svc.Create(context.Background(), userID, strings.Repeat("x", maxCaptionLength+1), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized caption should fail validation, got %v", err)
	}
}

func TestListNearbyAnchorsToCallerBucket(t *testing.T) {
	store := &fakePostStore{}
	userID := uuid.New()

	lat, lon := 37.774999, -122.419999
	profiles := &fakeProfileReader{profiles: map[uuid.UUID]model.Profile{
		userID: {UserID: userID, Latitude: &lat, Longitude: &lon},
	}}

	svc := NewService(store, profiles, fakeSigner{}, 20)

	if _, err := svc.ListNearby(context.Background(), userID); err != nil {
		t.Fatalf("list nearby: %v", err)
	}

	if store.lastLat != 37.77 || store.lastLon != -122.42 {
		t.Fatalf("feed query not anchored to rounded bucket: (%v, %v)", store.lastLat, store.lastLon)
	}
	if store.lastLimit != 20 {
		t.Fatalf("page size not applied, got %d", store.lastLimit)
	}
}

func TestListNearbyRequiresSharedLocation(t *testing.T) {
	userID := uuid.New()
	profiles := &fakeProfileReader{profiles: map[uuid.UUID]model.Profile{
		userID: {UserID: userID},
	}}

	svc := NewService(&fakePostStore{}, profiles, fakeSigner{}, 20)

	if _, err := svc.ListNearby(context.Background(), userID); !errors.Is(err, ErrLocationUnknown) {
		t.Fatalf("expected location unknown, got %v", err)
	}
}
