package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// LocalBroker dispatches straight into the in-process hub.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) Publish(_ context.Context, ev Event) error {
	b.hub.Dispatch(ev)
	return nil
}

// DefaultChannel is the Redis pub/sub channel shared by API instances.
const DefaultChannel = "churrasco:realtime"

// RedisBroker publishes through Redis so that every API instance delivers
// the event to the clients it holds.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub, log *zap.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBroker{client: client, channel: channel, hub: hub, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run relays channel messages into the local hub until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.log.Info("realtime: listening on redis channel", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("realtime: dropping malformed event", zap.Error(err))
				continue
			}
			b.hub.Dispatch(ev)
		}
	}
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Emit builds and publishes an event, logging instead of failing: a missed
// realtime push never fails the write that produced it.
func Emit(ctx context.Context, pub Publisher, log *zap.Logger, table string, typ EventType, record any, audience ...int64) {
	if pub == nil {
		return
	}
	ev, err := NewEvent(table, typ, record, audience...)
	if err == nil {
		err = pub.Publish(ctx, ev)
	}
	if err != nil && log != nil {
		log.Warn("realtime: publish failed", zap.String("table", table), zap.Error(err))
	}
}
