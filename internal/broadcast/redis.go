package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizroom/quizroom-go/internal/model"
)

// RedisConfig holds redis connection settings for the pub/sub gateway
type RedisConfig struct {
	// URL is the redis connection URL (e.g. redis://localhost:6379)
	URL string

	// Prefix namespaces the pub/sub channels
	Prefix string

	// Pool settings
	PoolSize     int
	MinIdleConns int
}

// DefaultRedisConfig returns sensible defaults for the redis gateway
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          "redis://localhost:6379",
		Prefix:       "quizroom",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisGateway is a Gateway backed by redis pub/sub, one channel per
// room. It lets several server instances share a single event stream.
type RedisGateway struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// Ensure RedisGateway implements Gateway
var _ Gateway = (*RedisGateway)(nil)

// NewRedisGateway connects to redis and verifies the connection
func NewRedisGateway(cfg RedisConfig, logger *slog.Logger) (*RedisGateway, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisGatewayWithClient(client, cfg.Prefix, logger), nil
}

// NewRedisGatewayWithClient creates a gateway over an existing client
// (for testing)
func NewRedisGatewayWithClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisGateway {
	return &RedisGateway{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "broadcast-redis")),
	}
}

// Close closes the redis connection
func (g *RedisGateway) Close() error {
	return g.client.Close()
}

// Publish sends the event to the room's redis channel
func (g *RedisGateway) Publish(ctx context.Context, code model.RoomCode, event string, payload any) error {
	env, err := marshalEnvelope(event, payload)
	if err != nil {
		return err
	}

	msg, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := g.client.Publish(ctx, g.channel(code), msg).Err(); err != nil {
		return fmt.Errorf("publish %s to room %s: %w", event, code, err)
	}
	return nil
}

// Subscribe opens a redis subscription on the room's channel and decodes
// incoming messages into envelopes
func (g *RedisGateway) Subscribe(ctx context.Context, code model.RoomCode) (*Subscription, error) {
	ps := g.client.Subscribe(ctx, g.channel(code))

	// Force the SUBSCRIBE exchange so delivery is guaranteed to start
	// before Subscribe returns
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to room %s: %w", code, err)
	}

	out := make(chan Envelope, sendBufferSize)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				g.logger.Warn("dropping undecodable event",
					slog.String("room", string(code)),
					slog.String("error", err.Error()))
				continue
			}
			select {
			case out <- env:
			default:
				g.logger.Warn("event dropped, subscriber buffer full",
					slog.String("room", string(code)),
					slog.String("event", env.Event))
			}
		}
	}()

	return NewSubscription(out, func() {
		_ = ps.Close()
	}), nil
}

func (g *RedisGateway) channel(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", g.prefix, code)
}
