package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenlit/backend/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	display_name,
	COALESCE(username, ''),
	COALESCE(bio, ''),
	COALESCE(avatar_url, ''),
	COALESCE(instagram_url, ''),
	COALESCE(twitter_url, ''),
	COALESCE(linkedin_url, ''),
	latitude,
	longitude,
	location_last_updated_at,
	created_at,
	updated_at
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Username,
		&p.Bio,
		&p.AvatarURL,
		&p.InstagramURL,
		&p.TwitterURL,
		&p.LinkedInURL,
		&p.Latitude,
		&p.Longitude,
		&p.LocationLastUpdatedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

// EnsureProfile bootstraps the default profile row on signup. A concurrent
// bootstrap for the same user lands on the conflict arm instead of failing.
func (r *ProfileRepo) EnsureProfile(ctx context.Context, userID uuid.UUID, displayName, username string) error {
	if r.pool == nil {
		return nil
	}
	if userID == uuid.Nil {
		return fmt.Errorf("invalid user id")
	}

	const query = `
INSERT INTO profiles (
	user_id,
	display_name,
	username,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	updated_at = NOW()
`

	if _, err := r.pool.Exec(ctx, query, userID, displayName, username); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}

	return nil
}

type ProfilePatch struct {
	DisplayName  *string
	Username     *string
	Bio          *string
	AvatarURL    *string
	InstagramURL *string
	TwitterURL   *string
	LinkedInURL  *string
}

// UpdateFields applies a partial patch; nil fields are left unchanged.
func (r *ProfileRepo) UpdateFields(ctx context.Context, userID uuid.UUID, patch ProfilePatch) error {
	if r.pool == nil {
		return nil
	}
	if userID == uuid.Nil {
		return fmt.Errorf("invalid user id")
	}

	const query = `
UPDATE profiles SET
	display_name = COALESCE($2, display_name),
	username = COALESCE($3, username),
	bio = COALESCE($4, bio),
	avatar_url = COALESCE($5, avatar_url),
	instagram_url = COALESCE($6, instagram_url),
	twitter_url = COALESCE($7, twitter_url),
	linkedin_url = COALESCE($8, linkedin_url),
	updated_at = NOW()
WHERE user_id = $1
`

	tag, err := r.pool.Exec(ctx, query,
		userID,
		patch.DisplayName,
		patch.Username,
		patch.Bio,
		patch.AvatarURL,
		patch.InstagramURL,
		patch.TwitterURL,
		patch.LinkedInURL,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// SaveLocation writes both coordinates in one statement so the pair is never
// half-set.
func (r *ProfileRepo) SaveLocation(ctx context.Context, userID uuid.UUID, lat, lon float64, at time.Time) error {
	if r.pool == nil {
		return nil
	}
	if userID == uuid.Nil {
		return fmt.Errorf("invalid user id")
	}

	const query = `
INSERT INTO profiles (
	user_id,
	display_name,
	latitude,
	longitude,
	location_last_updated_at,
	updated_at
) VALUES ($1, '', $2, $3, $4, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	location_last_updated_at = EXCLUDED.location_last_updated_at,
	updated_at = NOW()
`

	if _, err := r.pool.Exec(ctx, query, userID, lat, lon, at.UTC()); err != nil {
		return fmt.Errorf("save profile location: %w", err)
	}

	return nil
}

// ClearLocation nulls both coordinates together.
func (r *ProfileRepo) ClearLocation(ctx context.Context, userID uuid.UUID) error {
	if r.pool == nil {
		return nil
	}
	if userID == uuid.Nil {
		return fmt.Errorf("invalid user id")
	}

	const query = `
UPDATE profiles
SET
	latitude = NULL,
	longitude = NULL,
	location_last_updated_at = NULL,
	updated_at = NOW()
WHERE user_id = $1
`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("clear profile location: %w", err)
	}

	return nil
}

// ClearStaleLocations nulls coordinates that stopped refreshing before the
// cutoff, backing the cleanup worker.
func (r *ProfileRepo) ClearStaleLocations(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles
SET
	latitude = NULL,
	longitude = NULL,
	location_last_updated_at = NULL,
	updated_at = NOW()
WHERE location_last_updated_at IS NOT NULL
  AND location_last_updated_at < $1
  AND (latitude IS NOT NULL OR longitude IS NOT NULL)
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear stale locations: %w", err)
	}

	return tag.RowsAffected(), nil
}
