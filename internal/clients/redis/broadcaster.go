package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type Options struct {
	Addr        string
	Channel     string
	DialTimeout time.Duration
}

// Broadcaster publishes role notifications as JSON on a Redis pub/sub channel.
type Broadcaster struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewBroadcaster(log *logger.Logger, opts Options) (*Broadcaster, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(opts.Channel)
	if ch == "" {
		ch = "enforcement.notifications"
	}
	dial := opts.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: dial,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dial)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Broadcaster{
		log:     log.With("client", "RedisBroadcaster"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *Broadcaster) Notify(ctx context.Context, n types.Notification) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis broadcaster not initialized")
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	b.log.Debug("notification published", "org_id", n.OrgID, "target_role", n.TargetRole, "source_id", n.SourceID)
	return nil
}

// Listen subscribes to the channel and calls onMsg for each notification until
// ctx is done.
func (b *Broadcaster) Listen(ctx context.Context, onMsg func(n types.Notification)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis broadcaster not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return nil
			}
			var n types.Notification
			if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
				b.log.Warn("bad notification payload", "error", err)
				continue
			}
			onMsg(n)
		}
	}
}

func (b *Broadcaster) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// LogNotifier writes notifications to the log. It stands in when Redis is not configured.
type LogNotifier struct {
	Log *logger.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n types.Notification) error {
	if l.Log == nil {
		return nil
	}
	l.Log.Info("notification",
		"org_id", n.OrgID,
		"venue_id", n.VenueID,
		"target_role", n.TargetRole,
		"severity", n.Severity,
		"title", n.Title,
		"source_table", n.SourceTable,
		"source_id", n.SourceID,
	)
	return nil
}
