package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

const channelSuffix = "state-changed"

// RedisChannel fans messages out over redis pub/sub on
// <namespace>:<origin>:state-changed.
type RedisChannel struct {
	client  *redis.Client
	channel string
	buffer  int
	logg    *logger.Logger
}

func NewRedisChannel(client *redis.Client, origin string, buffer int, logg *logger.Logger) (*RedisChannel, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if origin == "" {
		return nil, fmt.Errorf("origin required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RedisChannel{
		client:  client,
		channel: client.Key(origin, channelSuffix),
		buffer:  bufferSize(buffer),
		logg:    logg,
	}, nil
}

// Name returns the redis channel name.
func (c *RedisChannel) Name() string { return c.channel }

func (c *RedisChannel) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode broadcast message: %w", err)
	}
	if _, err := c.client.Publish(ctx, c.channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", c.channel, err)
	}
	return nil
}

// Subscribe confirms the subscription with redis before returning so that
// messages published afterwards are not missed.
func (c *RedisChannel) Subscribe(ctx context.Context) (Subscription, error) {
	ps, err := c.client.Subscribe(ctx, c.channel)
	if err != nil {
		return nil, err
	}
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", c.channel, err)
	}

	sub := &redisSubscription{
		ps:   ps,
		out:  make(chan Message, c.buffer),
		done: make(chan struct{}),
	}
	go sub.pump(c.logg.WithField(ctx, "channel", c.channel), c.logg)
	return sub, nil
}

type redisSubscription struct {
	ps        *goredis.PubSub
	out       chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func (s *redisSubscription) pump(ctx context.Context, logg *logger.Logger) {
	defer close(s.out)
	in := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case raw, ok := <-in:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "discarding undecodable broadcast message")
				continue
			}
			offer(s.out, msg)
		}
	}
}

func (s *redisSubscription) Messages() <-chan Message { return s.out }

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
