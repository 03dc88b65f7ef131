package redis

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const closureChannelPrefix = "notify:closure:"

// NotifyRepo publishes best-effort user notifications over redis pub/sub.
// Publish failures are logged and swallowed; delivery is never load-bearing.
type NotifyRepo struct {
	client *goredis.Client
	log    *zap.Logger
}

func NewNotifyRepo(client *goredis.Client, log *zap.Logger) *NotifyRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotifyRepo{client: client, log: log}
}

type closureEvent struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

func (r *NotifyRepo) NotifyClosure(ctx context.Context, recipientID, conversationID, message string) {
	if r.client == nil || recipientID == "" {
		return
	}

	payload, err := json.Marshal(closureEvent{
		ConversationID: conversationID,
		Message:        message,
	})
	if err != nil {
		return
	}

	if err := r.client.Publish(ctx, closureChannelPrefix+recipientID, payload).Err(); err != nil {
		r.log.Warn("closure notification publish failed",
			zap.String("recipient_id", recipientID),
			zap.Error(err))
	}
}
