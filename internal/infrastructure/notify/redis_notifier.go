// Package notify delivers workflow notifications over Redis pub/sub.
//
// Delivery is at-most-once and best-effort: a failed publish is logged and
// dropped, never surfaced to the caller, so notification trouble can never
// undo a committed state transition.
package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/api/metrics"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

const (
	adminChannel      = "notifications:admin"
	userChannelPrefix = "notifications:user:"
)

// RedisNotifier implements ports.Notifier on Redis pub/sub channels: one
// shared admin channel plus one channel per username.
type RedisNotifier struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisNotifier(client *redis.Client, log zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

// Notify publishes the message to the audience's channel.
func (n *RedisNotifier) Notify(ctx context.Context, audience ports.Audience, message string) {
	channel := n.channel(audience)
	if channel == "" {
		n.log.Warn().Str("message", message).Msg("notification dropped: empty audience")
		return
	}

	if err := n.client.Publish(ctx, channel, message).Err(); err != nil {
		metrics.NotificationsTotal.WithLabelValues(audienceLabel(audience), "error").Inc()
		n.log.Warn().Err(err).Str("channel", channel).Msg("failed to publish notification")
		return
	}

	metrics.NotificationsTotal.WithLabelValues(audienceLabel(audience), "published").Inc()
	n.log.Debug().Str("channel", channel).Str("message", message).Msg("notification published")
}

func (n *RedisNotifier) channel(audience ports.Audience) string {
	if audience.Admin {
		return adminChannel
	}
	if audience.Username == "" {
		return ""
	}
	return userChannelPrefix + audience.Username
}

func audienceLabel(audience ports.Audience) string {
	if audience.Admin {
		return "admin"
	}
	return "user"
}
