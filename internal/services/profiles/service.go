package profiles

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
	"github.com/zenlit/backend/internal/pkg/validate"
	pgrepo "github.com/zenlit/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const (
	maxDisplayNameLength = 64
	maxUsernameLength    = 30
	maxBioLength         = 500
)

type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID, displayName, username string) error
	UpdateFields(ctx context.Context, userID uuid.UUID, patch pgrepo.ProfilePatch) error
}

type Service struct {
	store ProfileStore
}

// UpdateInput is a partial patch; nil fields are left untouched.
type UpdateInput struct {
	DisplayName  *string
	Username     *string
	Bio          *string
	AvatarURL    *string
	InstagramURL *string
	TwitterURL   *string
	LinkedInURL  *string
}

func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// EnsureProfile creates the initial row for a fresh account. The generated
// username is a placeholder the user can change later.
func (s *Service) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	if s.store == nil {
		return fmt.Errorf("profile store is nil")
	}
	if userID == uuid.Nil {
		return fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	username := "user_" + strings.ReplaceAll(userID.String(), "-", "")[:12]
	if err := s.store.EnsureProfile(ctx, userID, "", username); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}

	return nil
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	patch, err := normalizePatch(in)
	if err != nil {
		return model.Profile{}, err
	}

	if err := s.store.UpdateFields(ctx, userID, patch); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("reload profile: %w", err)
	}

	return profile, nil
}

func normalizePatch(in UpdateInput) (pgrepo.ProfilePatch, error) {
	patch := pgrepo.ProfilePatch{}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if !validate.Required(name) || !validate.MaxLen(name, maxDisplayNameLength) {
			return pgrepo.ProfilePatch{}, fmt.Errorf("display name must be 1..%d characters: %w", maxDisplayNameLength, ErrValidation)
		}
		patch.DisplayName = &name
	}

	if in.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*in.Username))
		if !validUsername(username) {
			return pgrepo.ProfilePatch{}, fmt.Errorf("username must be 3..%d of [a-z0-9_]: %w", maxUsernameLength, ErrValidation)
		}
		patch.Username = &username
	}

	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if !validate.MaxLen(bio, maxBioLength) {
			return pgrepo.ProfilePatch{}, fmt.Errorf("bio exceeds %d characters: %w", maxBioLength, ErrValidation)
		}
		patch.Bio = &bio
	}

	if in.AvatarURL != nil {
		avatar := strings.TrimSpace(*in.AvatarURL)
		if avatar != "" && !validHTTPURL(avatar) {
			return pgrepo.ProfilePatch{}, fmt.Errorf("avatar url is not a valid http(s) url: %w", ErrValidation)
		}
		patch.AvatarURL = &avatar
	}

	for _, link := range []struct {
		in  *string
		out **string
	}{
		{in: in.InstagramURL, out: &patch.InstagramURL},
		{in: in.TwitterURL, out: &patch.TwitterURL},
		{in: in.LinkedInURL, out: &patch.LinkedInURL},
	} {
		if link.in == nil {
			continue
		}
		value := strings.TrimSpace(*link.in)
		if value != "" && !validHTTPURL(value) {
			return pgrepo.ProfilePatch{}, fmt.Errorf("social url is not a valid http(s) url: %w", ErrValidation)
		}
		*link.out = &value
	}

	return patch, nil
}

func validUsername(username string) bool {
	if len(username) < 3 || len(username) > maxUsernameLength {
		return false
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
