package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Publisher sends an event to every subscribed hub.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus is a Publisher whose events can also be received.
type Bus interface {
	Publisher
	// Subscribe delivers events until ctx is done or the returned stop func
	// is called; the channel is closed afterwards.
	Subscribe(ctx context.Context) (<-chan Event, func() error)
}

// RedisBus shares events between authority nodes over Redis Pub/Sub.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func() error) {
	pubsub := b.rdb.Subscribe(ctx, EventsChannel)
	out := make(chan Event)

	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.ErrorContext(ctx, "Could not unmarshal global event", "error", err, "payload", msg.Payload)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	slog.InfoContext(ctx, "Event subscriber started", "channel", EventsChannel)
	return out, pubsub.Close
}

// LocalBus delivers events inside one process.
type LocalBus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[chan Event]struct{})}
}

// Publish queues ev for every subscriber. A subscriber whose buffer is full
// misses the event.
func (b *LocalBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.WarnContext(ctx, "Dropping event for slow subscriber", "event.type", ev.Type)
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan Event, func() error) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	stopped := make(chan struct{})
	stop := func() error {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
			close(stopped)
		})
		return nil
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-stopped:
		}
	}()
	return ch, stop
}
