package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/domain/model"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// GhostedRecord is one conversation the user has left unanswered past the
// hard threshold.
type GhostedRecord struct {
	ConversationID        string
	OtherUserID           string
	HoursSinceLastMessage float64
}

// NudgeRecord is one conversation inside the soft nudge window.
type NudgeRecord struct {
	ConversationID string
	UserToNudge    string
	OtherUserID    string
	HoursInactive  float64
	SnoozedUntil   *time.Time
}

// CreateIfAbsent lazily creates the conversation for a match. Pair uniqueness
// comes from the unique constraint on match_id; a concurrent first-open loses
// the insert and reads the winner's row instead.
func (r *ConversationRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, id string, matchID int64, userAID, userBID string, now time.Time) (model.Conversation, bool, error) {
	if id == "" || matchID <= 0 || userAID == "" || userBID == "" {
		return model.Conversation{}, false, fmt.Errorf("invalid conversation payload")
	}
	if tx == nil {
		return model.Conversation{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var created model.Conversation
	err := tx.QueryRow(ctx, `
INSERT INTO conversations (
	id,
	match_id,
	user_a_id,
	user_b_id,
	status,
	created_at
) VALUES ($1, $2, $3, $4, 'active', $5)
ON CONFLICT (match_id) DO NOTHING
RETURNING id, match_id, user_a_id, user_b_id, status, created_at
`, id, matchID, userAID, userBID, now.UTC()).Scan(
		&created.ID,
		&created.MatchID,
		&created.UserAID,
		&created.UserBID,
		&created.Status,
		&created.CreatedAt,
	)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, false, fmt.Errorf("create conversation: %w", err)
	}

	existing, err := r.getByMatchTx(ctx, tx, matchID)
	if err != nil {
		return model.Conversation{}, false, err
	}
	return existing, false, nil
}

func (r *ConversationRepo) getByMatchTx(ctx context.Context, tx pgx.Tx, matchID int64) (model.Conversation, error) {
	var conv model.Conversation
	err := tx.QueryRow(ctx, `
SELECT
	id, match_id, user_a_id, user_b_id, status,
	last_message_at, COALESCE(last_sender_id, ''), reminder_sent_at,
	closed_at, COALESCE(closed_by, ''), COALESCE(closure_reason, ''), COALESCE(closure_message, ''),
	created_at
FROM conversations
WHERE match_id = $1
LIMIT 1
`, matchID).Scan(
		&conv.ID,
		&conv.MatchID,
		&conv.UserAID,
		&conv.UserBID,
		&conv.Status,
		&conv.LastMessageAt,
		&conv.LastSenderID,
		&conv.ReminderSentAt,
		&conv.ClosedAt,
		&conv.ClosedBy,
		&conv.ClosureReason,
		&conv.ClosureMessage,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation by match: %w", err)
	}
	return conv, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (model.Conversation, error) {
	if id == "" {
		return model.Conversation{}, fmt.Errorf("invalid conversation id")
	}
	if r.pool == nil {
		return model.Conversation{}, ErrConversationNotFound
	}

	var conv model.Conversation
	err := r.pool.QueryRow(ctx, `
SELECT
	id, match_id, user_a_id, user_b_id, status,
	last_message_at, COALESCE(last_sender_id, ''), reminder_sent_at,
	closed_at, COALESCE(closed_by, ''), COALESCE(closure_reason, ''), COALESCE(closure_message, ''),
	created_at
FROM conversations
WHERE id = $1
LIMIT 1
`, id).Scan(
		&conv.ID,
		&conv.MatchID,
		&conv.UserAID,
		&conv.UserBID,
		&conv.Status,
		&conv.LastMessageAt,
		&conv.LastSenderID,
		&conv.ReminderSentAt,
		&conv.ClosedAt,
		&conv.ClosedBy,
		&conv.ClosureReason,
		&conv.ClosureMessage,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return conv, nil
}

// ListGhosted returns active conversations where the last message was sent by
// the other party at least thresholdHours ago. Ordered oldest-first so the
// blocked queue surfaces the most neglected conversation first.
func (r *ConversationRepo) ListGhosted(ctx context.Context, userID string, thresholdHours float64, now time.Time) ([]GhostedRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []GhostedRecord{}, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	CASE WHEN c.user_a_id = $1 THEN c.user_b_id ELSE c.user_a_id END AS other_user_id,
	EXTRACT(EPOCH FROM ($3::timestamptz - c.last_message_at)) / 3600.0 AS hours_stale
FROM conversations c
WHERE
	(c.user_a_id = $1 OR c.user_b_id = $1)
	AND c.status = 'active'
	AND c.last_message_at IS NOT NULL
	AND c.last_sender_id <> $1
	AND c.last_message_at <= $3::timestamptz - ($2 * INTERVAL '1 hour')
ORDER BY c.last_message_at ASC, c.id ASC
`, userID, thresholdHours, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list ghosted conversations: %w", err)
	}
	defer rows.Close()

	items := make([]GhostedRecord, 0, 8)
	for rows.Next() {
		var rec GhostedRecord
		if err := rows.Scan(&rec.ConversationID, &rec.OtherUserID, &rec.HoursSinceLastMessage); err != nil {
			return nil, fmt.Errorf("scan ghosted conversation: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate ghosted conversations: %w", rows.Err())
	}

	return items, nil
}

// ListNeedingNudge returns the user's conversations inside [fromHours,
// toHours) of staleness, with their snooze marker so the caller can suppress
// snoozed items from the soft queue.
func (r *ConversationRepo) ListNeedingNudge(ctx context.Context, userID string, fromHours, toHours float64, now time.Time) ([]NudgeRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []NudgeRecord{}, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	$1 AS user_to_nudge,
	CASE WHEN c.user_a_id = $1 THEN c.user_b_id ELSE c.user_a_id END AS other_user_id,
	EXTRACT(EPOCH FROM ($4::timestamptz - c.last_message_at)) / 3600.0 AS hours_inactive,
	c.reminder_sent_at
FROM conversations c
WHERE
	(c.user_a_id = $1 OR c.user_b_id = $1)
	AND c.status = 'active'
	AND c.last_message_at IS NOT NULL
	AND c.last_sender_id <> $1
	AND c.last_message_at <= $4::timestamptz - ($2 * INTERVAL '1 hour')
	AND c.last_message_at > $4::timestamptz - ($3 * INTERVAL '1 hour')
ORDER BY c.last_message_at ASC, c.id ASC
`, userID, fromHours, toHours, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list conversations needing nudge: %w", err)
	}
	defer rows.Close()

	items := make([]NudgeRecord, 0, 8)
	for rows.Next() {
		var rec NudgeRecord
		if err := rows.Scan(&rec.ConversationID, &rec.UserToNudge, &rec.OtherUserID, &rec.HoursInactive, &rec.SnoozedUntil); err != nil {
			return nil, fmt.Errorf("scan nudge candidate: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate nudge candidates: %w", rows.Err())
	}

	return items, nil
}

// SetReminderSentAt stamps the snooze marker.
func (r *ConversationRepo) SetReminderSentAt(ctx context.Context, id string, until time.Time) error {
	if id == "" {
		return fmt.Errorf("invalid conversation id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE conversations
SET reminder_sent_at = $2
WHERE id = $1 AND status = 'active'
`, id, until.UTC())
	if err != nil {
		return fmt.Errorf("set reminder marker: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// Close finalizes the conversation. Terminal states never reopen.
func (r *ConversationRepo) Close(ctx context.Context, tx pgx.Tx, id string, status enums.ConversationStatus, closedBy, reason, message string, at time.Time) error {
	if id == "" || closedBy == "" || !status.Terminal() {
		return fmt.Errorf("invalid closure payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE conversations
SET
	status = $2,
	closed_at = $3,
	closed_by = $4,
	closure_reason = $5,
	closure_message = $6
WHERE id = $1 AND status = 'active'
`, id, string(status), at.UTC(), closedBy, reason, message)
	if err != nil {
		return fmt.Errorf("close conversation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// TouchLastMessage updates the denormalized message marker the health state
// machine reads.
func (r *ConversationRepo) TouchLastMessage(ctx context.Context, tx pgx.Tx, id, senderID string, at time.Time) error {
	if id == "" || senderID == "" {
		return fmt.Errorf("invalid message marker payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE conversations
SET
	last_message_at = $3,
	last_sender_id = $2,
	reminder_sent_at = NULL
WHERE id = $1 AND status = 'active'
`, id, senderID, at.UTC())
	if err != nil {
		return fmt.Errorf("touch last message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// ClearExpiredReminders drops snooze markers that have lapsed. Run from the
// maintenance job; the health service also treats lapsed markers as absent,
// so this is hygiene rather than correctness.
func (r *ConversationRepo) ClearExpiredReminders(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE conversations
SET reminder_sent_at = NULL
WHERE reminder_sent_at IS NOT NULL AND reminder_sent_at <= $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired reminders: %w", err)
	}

	return result.RowsAffected(), nil
}
