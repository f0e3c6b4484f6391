package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Revalidator marks cached views as stale.
type Revalidator interface {
	Revalidate(ctx context.Context, tags ...string)
}

// Listener is notified with the tags of every applied revalidation.
type Listener func(tags []string)

// RevalidationRecorder counts revalidation signals.
type RevalidationRecorder interface {
	RecordRevalidation(tag, source string)
}

type message struct {
	Origin string   `json:"origin"`
	Tags   []string `json:"tags"`
}

// Bus applies revalidations to the local cache and listeners, and fans them
// out to other instances over Redis pub/sub when a client is configured.
type Bus struct {
	cache   *TagCache
	client  *redis.Client
	channel string
	origin  string
	log     *zap.Logger
	rec     RevalidationRecorder

	mu        sync.RWMutex
	listeners []Listener
}

func NewBus(c *TagCache, client *redis.Client, channel string, log *zap.Logger, rec RevalidationRecorder) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		cache:   c,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log.Named("revalidate"),
		rec:     rec,
	}
}

func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Revalidate never fails the caller: a publish error is logged and the local
// invalidation still applies.
func (b *Bus) Revalidate(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	b.apply(tags, "local")

	if b.client == nil {
		return
	}
	payload, err := json.Marshal(message{Origin: b.origin, Tags: tags})
	if err != nil {
		b.log.Error("encode revalidation", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.log.Warn("publish revalidation", zap.Strings("tags", tags), zap.Error(err))
	}
}

// Listen consumes revalidations published by other instances until ctx is done.
func (b *Bus) Listen(ctx context.Context) {
	if b.client == nil {
		return
	}
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn("receive revalidation", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		b.handle(msg.Payload)
	}
}

func (b *Bus) handle(payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		b.log.Warn("decode revalidation", zap.Error(err))
		return
	}
	if m.Origin == b.origin || len(m.Tags) == 0 {
		return
	}
	b.apply(m.Tags, "remote")
}

func (b *Bus) apply(tags []string, source string) {
	if b.cache != nil {
		b.cache.Invalidate(tags...)
	}
	if b.rec != nil {
		for _, tag := range tags {
			b.rec.RecordRevalidation(tag, source)
		}
	}
	b.log.Debug("revalidated", zap.Strings("tags", tags), zap.String("source", source))

	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.RUnlock()
	for _, l := range listeners {
		l(tags)
	}
}
