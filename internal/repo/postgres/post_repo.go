package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenlit/backend/internal/domain/model"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Insert(ctx context.Context, post model.Post) error {
	if r.pool == nil {
		return nil
	}
	if post.ID == uuid.Nil || post.UserID == uuid.Nil {
		return fmt.Errorf("invalid post payload")
	}

	const query = `
INSERT INTO posts (
	id,
	user_id,
	caption,
	media_key,
	created_at
) VALUES ($1, $2, $3, $4, $5)
`

	if _, err := r.pool.Exec(ctx, query, post.ID, post.UserID, post.Caption, post.MediaKey, post.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// ListByBucket returns the location-filtered feed: posts authored by users
// currently sharing from the same 2-decimal cell, newest first.
func (r *PostRepo) ListByBucket(ctx context.Context, lat, lon float64, limit int) ([]model.Post, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.id,
	p.user_id,
	p.caption,
	COALESCE(p.media_key, ''),
	p.created_at,
	pr.display_name,
	COALESCE(pr.avatar_url, '')
FROM posts p
JOIN profiles pr ON pr.user_id = p.user_id
WHERE pr.latitude IS NOT NULL
  AND pr.longitude IS NOT NULL
  AND ROUND(pr.latitude::numeric, 2) = ROUND($1::numeric, 2)
  AND ROUND(pr.longitude::numeric, 2) = ROUND($2::numeric, 2)
ORDER BY p.created_at DESC
LIMIT $3
`, lat, lon, limit)
	if err != nil {
		return nil, fmt.Errorf("query bucket feed: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Caption,
			&p.MediaKey,
			&p.CreatedAt,
			&p.AuthorName,
			&p.AuthorAvatar,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}
