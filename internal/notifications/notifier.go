// Package notifications fans tool request events out over Redis pub/sub to
// websocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"toolshed/internal/models"
	"toolshed/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "toolrequests:user:"
	// AllChannel carries every event, for staff dashboards.
	AllChannel = "toolrequests:all"
)

// Event types published after successful writes.
const (
	EventCreated       = "toolrequest.created"
	EventUpdated       = "toolrequest.updated"
	EventStatusChanged = "toolrequest.status_changed"
)

// Event describes a change to a tool request. PreviousUserID is set when an
// update moved the request to another user.
type Event struct {
	ID             string                 `json:"id"`
	Type           string                 `json:"type"`
	RequestID      uint                   `json:"request_id"`
	UserID         uint                   `json:"user_id"`
	PreviousUserID uint                   `json:"previous_user_id,omitempty"`
	Code           string                 `json:"code"`
	StatusID       models.RequestStatusID `json:"status_id"`
	Status         string                 `json:"status"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

// NewEvent builds an event for req with a fresh ID.
func NewEvent(eventType string, req *models.ToolRequest) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		RequestID:  req.ID,
		UserID:     req.UserID,
		Code:       req.Code,
		StatusID:   req.StatusID,
		Status:     req.StatusID.Label(),
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier publishes events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// PublishRequestEvent sends ev to its owner's channel and to AllChannel. A
// reassigned request is also announced to its previous owner.
func (n *Notifier) PublishRequestEvent(ctx context.Context, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := n.rdb.Pipeline()
	pipe.Publish(ctx, UserChannel(ev.UserID), payload)
	if ev.PreviousUserID != 0 && ev.PreviousUserID != ev.UserID {
		pipe.Publish(ctx, UserChannel(ev.PreviousUserID), payload)
	}
	pipe.Publish(ctx, AllChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// StartSubscriber subscribes to every user channel and calls onMessage for
// each payload until ctx is done. It returns once the subscription is active.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(userID uint, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, err := parseUserChannel(msg.Channel)
				if err != nil {
					observability.Logger.Warn("invalid notification channel", "channel", msg.Channel)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.Logger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(userID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

func parseUserChannel(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("not a user channel: %s", channel)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
