package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Append(ctx context.Context, tx pgx.Tx, msg model.Message) error {
	if msg.ID == "" || msg.ConversationID == "" || msg.SenderID == "" {
		return fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO messages (
	id,
	conversation_id,
	sender_id,
	body,
	read,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
`, msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.Read, createdAt.UTC()); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

func (r *MessageRepo) ListRecent(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("invalid conversation id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, sender_id, body, read, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Body, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, msg)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, readerID string) error {
	if conversationID == "" || readerID == "" {
		return fmt.Errorf("invalid read marker payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE messages
SET read = TRUE
WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE
`, conversationID, readerID); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	return nil
}
