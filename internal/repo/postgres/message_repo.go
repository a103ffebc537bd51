package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenlit/backend/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Insert(ctx context.Context, msg model.Message) error {
	if r.pool == nil {
		return nil
	}
	if msg.ID == uuid.Nil || msg.SenderID == uuid.Nil || msg.ReceiverID == uuid.Nil {
		return fmt.Errorf("invalid message payload")
	}

	const query = `
INSERT INTO messages (
	id,
	sender_id,
	receiver_id,
	body,
	created_at
) VALUES ($1, $2, $3, $4, $5)
`

	if _, err := r.pool.Exec(ctx, query, msg.ID, msg.SenderID, msg.ReceiverID, msg.Body, msg.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// Conversation returns both directions of a two-party thread, oldest first.
func (r *MessageRepo) Conversation(ctx context.Context, a, b uuid.UUID, limit int) ([]model.Message, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, sender_id, receiver_id, body, created_at, read_at
FROM messages
WHERE (sender_id = $1 AND receiver_id = $2)
   OR (sender_id = $2 AND receiver_id = $1)
ORDER BY created_at ASC
LIMIT $3
`, a, b, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt, &m.ReadAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// MarkRead stamps every unread message the reader received from the peer.
func (r *MessageRepo) MarkRead(ctx context.Context, readerID, peerID uuid.UUID) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE messages
SET read_at = NOW()
WHERE receiver_id = $1
  AND sender_id = $2
  AND read_at IS NULL
`, readerID, peerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return tag.RowsAffected(), nil
}
