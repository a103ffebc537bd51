package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenlit/backend/internal/domain/model"
)

type RadarRepo struct {
	pool *pgxpool.Pool
}

func NewRadarRepo(pool *pgxpool.Pool) *RadarRepo {
	return &RadarRepo{pool: pool}
}

const nearbyProjection = `
	user_id,
	display_name,
	COALESCE(username, ''),
	COALESCE(bio, ''),
	COALESCE(avatar_url, ''),
	COALESCE(instagram_url, ''),
	COALESCE(twitter_url, ''),
	COALESCE(linkedin_url, ''),
	latitude,
	longitude`

// UsersInBucket returns every sharing user whose coordinate rounds to the
// same 2-decimal cell as the given one, excluding the caller and incomplete
// profiles. The database rounding here is the authority; callers pre-round
// only for consistency. Distance is fixed at zero: bucket equality already
// answered "nearby", nothing more precise is disclosed.
func (r *RadarRepo) UsersInBucket(ctx context.Context, callerID *uuid.UUID, lat, lon float64) ([]model.NearbyUser, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+nearbyProjection+`,
	0::float8 AS distance_km
FROM profiles
WHERE latitude IS NOT NULL
  AND longitude IS NOT NULL
  AND display_name IS NOT NULL
  AND display_name <> ''
  AND ROUND(latitude::numeric, 2) = ROUND($1::numeric, 2)
  AND ROUND(longitude::numeric, 2) = ROUND($2::numeric, 2)
  AND ($3::uuid IS NULL OR user_id <> $3)
ORDER BY display_name ASC
`, lat, lon, callerID)
	if err != nil {
		return nil, fmt.Errorf("query location bucket: %w", err)
	}
	defer rows.Close()

	return scanNearbyUsers(rows)
}

// UsersWithinRadius is the haversine fallback: a true great-circle search
// with a caller-provided radius and limit, ordered nearest first.
func (r *RadarRepo) UsersWithinRadius(ctx context.Context, callerID *uuid.UUID, lat, lon, radiusKM float64, limit int) ([]model.NearbyUser, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT * FROM (
	SELECT`+nearbyProjection+`,
		ROUND((2 * 6371 * asin(LEAST(1.0, sqrt(
			power(sin(radians((latitude - $1) / 2)), 2) +
			cos(radians($1)) * cos(radians(latitude)) *
			power(sin(radians((longitude - $2) / 2)), 2)
		))))::numeric, 2)::float8 AS distance_km
	FROM profiles
	WHERE latitude IS NOT NULL
	  AND longitude IS NOT NULL
	  AND display_name IS NOT NULL
	  AND display_name <> ''
	  AND ($3::uuid IS NULL OR user_id <> $3)
) candidates
WHERE distance_km <= $4
ORDER BY distance_km ASC, display_name ASC
LIMIT $5
`, lat, lon, callerID, radiusKM, limit)
	if err != nil {
		return nil, fmt.Errorf("query nearby users: %w", err)
	}
	defer rows.Close()

	return scanNearbyUsers(rows)
}

// BucketPopulation counts sharing users in a cell, for debug logging only.
func (r *RadarRepo) BucketPopulation(ctx context.Context, lat, lon float64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM profiles
WHERE latitude IS NOT NULL
  AND longitude IS NOT NULL
  AND ROUND(latitude::numeric, 2) = ROUND($1::numeric, 2)
  AND ROUND(longitude::numeric, 2) = ROUND($2::numeric, 2)
`, lat, lon).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bucket population: %w", err)
	}

	return count, nil
}

type nearbyRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanNearbyUsers(rows nearbyRows) ([]model.NearbyUser, error) {
	users := make([]model.NearbyUser, 0)
	for rows.Next() {
		var u model.NearbyUser
		if err := rows.Scan(
			&u.UserID,
			&u.DisplayName,
			&u.Username,
			&u.Bio,
			&u.AvatarURL,
			&u.InstagramURL,
			&u.TwitterURL,
			&u.LinkedInURL,
			&u.Latitude,
			&u.Longitude,
			&u.DistanceKM,
		); err != nil {
			return nil, fmt.Errorf("scan nearby user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearby users: %w", err)
	}

	return users, nil
}
