package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Notification is a push message about a receipt event.
type Notification struct {
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	ReferenceID string            `json:"referenceId"`
	UserID      string            `json:"userId,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Notifier delivers notifications. Callers invoke it after commit.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NewRedis connects to url and pings it. An empty url returns (nil, nil).
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// RedisNotifier pushes JSON notifications onto a Redis list consumed by the
// push-delivery worker.
type RedisNotifier struct {
	rdb   redis.Cmdable
	queue string
}

func NewRedisNotifier(rdb redis.Cmdable, queue string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, queue: queue}
}

func (n *RedisNotifier) Send(ctx context.Context, msg Notification) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return n.rdb.LPush(ctx, n.queue, encoded).Err()
}

// LogNotifier writes notifications to the logger. Used when Redis is not configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg Notification) error {
	n.log.Info("notification",
		slog.String("type", msg.Type),
		slog.String("title", msg.Title),
		slog.String("reference_id", msg.ReferenceID),
	)
	return nil
}
