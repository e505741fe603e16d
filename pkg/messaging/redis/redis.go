// Package redis publishes audit events over Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/puskesmas-merdeka/simpus-api/pkg/circuitbreaker"
	"github.com/puskesmas-merdeka/simpus-api/pkg/messaging"
)

// Options tune the client built from a redis:// URL.
type Options struct {
	URL string
	// Buffer is the per-subscription queue; slow readers lose nothing until
	// it fills.
	Buffer      int
	PoolSize    int
	DialTimeout time.Duration
	// BreakAfter consecutive publish errors open the breaker for Cooldown.
	BreakAfter int
	Cooldown   time.Duration
}

func DefaultOptions(url string) Options {
	return Options{
		URL:         url,
		Buffer:      64,
		PoolSize:    8,
		DialTimeout: 3 * time.Second,
		BreakAfter:  5,
		Cooldown:    10 * time.Second,
	}
}

type Broker struct {
	rdb    *redis.Client
	pub    *circuitbreaker.CircuitBreaker
	buffer int
	log    zerolog.Logger
}

var _ messaging.Broker = (*Broker)(nil)

// Connect dials Redis and fails unless PING answers.
func Connect(ctx context.Context, o Options, log zerolog.Logger) (*Broker, error) {
	ro, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	ro.PoolSize = o.PoolSize
	ro.DialTimeout = o.DialTimeout

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Broker{
		rdb: rdb,
		pub: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-publish",
			MaxFailures: o.BreakAfter,
			Timeout:     o.Cooldown,
		}),
		buffer: o.Buffer,
		log:    log.With().Str("component", "redis").Logger(),
	}, nil
}

// Publish encodes message as JSON. Returns circuitbreaker.ErrOpen while the
// breaker is open.
func (b *Broker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", channel, err)
	}
	return b.pub.Execute(func() error {
		return b.rdb.Publish(ctx, channel, payload).Err()
	})
}

// Subscribe confirms the subscription before returning. The channel closes
// when ctx ends or the connection is closed.
func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := b.rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, b.buffer)
	in := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					b.log.Debug().Str("channel", channel).Msg("Subscription ended")
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *Broker) Close() error {
	return b.rdb.Close()
}
