package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/pkg/log"
)

// subscriberBuffer bounds the per-subscription event queue. A full
// queue drops events instead of stalling the Redis reader.
const subscriberBuffer = 100

// RedisPubSub is the Redis-backed event bus used to fan broadcasts out
// across tracker instances.
type RedisPubSub struct {
	client *redis.Client
	logger zerolog.Logger

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisPubSub connects to Redis and verifies the connection with a
// bounded ping before returning.
func NewRedisPubSub(cfg RedisConfig) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}

	return &RedisPubSub{
		client: client,
		logger: log.L().With().Str("component", "pubsub").Logger(),
		subs:   make(map[string]*redis.PubSub),
	}, nil
}

// Publish sends the event to the given channel.
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe listens on a single channel.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return r.listen(ctx, channel, r.client.Subscribe(ctx, channel))
}

// SubscribePattern listens on every channel matching the glob pattern.
func (r *RedisPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return r.listen(ctx, pattern, r.client.PSubscribe(ctx, pattern))
}

func (r *RedisPubSub) listen(ctx context.Context, key string, sub *redis.PubSub) (<-chan *Event, error) {
	r.mu.Lock()
	r.subs[key] = sub
	r.mu.Unlock()

	events := make(chan *Event, subscriberBuffer)
	go r.pump(ctx, sub, events)
	return events, nil
}

// Unsubscribe tears down the subscription for a channel or pattern.
// Closing the underlying Redis subscription ends its pump, which in
// turn closes the event channel handed out by Subscribe.
func (r *RedisPubSub) Unsubscribe(_ context.Context, channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[channel]
	if !ok {
		return nil
	}
	delete(r.subs, channel)
	return sub.Close()
}

// Close shuts down every subscription and the client.
func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subs {
		sub.Close()
	}
	r.subs = make(map[string]*redis.PubSub)
	return r.client.Close()
}

// pump decodes Redis messages into events until the subscription closes
// or the context ends. Malformed payloads are logged and skipped; a
// full consumer drops the event rather than blocking the reader.
func (r *RedisPubSub) pump(ctx context.Context, sub *redis.PubSub, events chan<- *Event) {
	defer close(events)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("malformed event payload")
				continue
			}

			select {
			case events <- &event:
			case <-ctx.Done():
				return
			default:
				r.logger.Warn().Str("channel", msg.Channel).Msg("subscriber queue full, event dropped")
			}
		}
	}
}
