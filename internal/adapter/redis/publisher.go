package redisadapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"fundraiser/internal/config/configs"
	"fundraiser/internal/core/domain"
)

// StreamPublisher appends ledger notifications to a Redis stream, one entry
// per event, so indexers can consume them with XREAD or consumer groups.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewClient builds a client from cfg and checks connectivity.
func NewClient(ctx context.Context, cfg configs.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewStreamPublisher returns a publisher writing to stream.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish appends events in one pipeline round trip.
func (p *StreamPublisher) Publish(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range events {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: p.stream,
				MaxLen: p.maxLen,
				Approx: p.maxLen > 0,
				Values: eventValues(e),
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// eventValues flattens an event into stream entry fields. Amounts are
// decimal strings of smallest units.
func eventValues(e domain.Event) map[string]interface{} {
	v := map[string]interface{}{
		"seq":         strconv.FormatInt(e.Seq, 10),
		"id":          e.ID,
		"kind":        string(e.Kind),
		"campaign_id": strconv.FormatUint(e.CampaignID, 10),
		"actor":       e.Actor.String(),
		"amount":      strconv.FormatUint(e.Amount, 10),
		"created_at":  e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Recipient != "" {
		v["recipient"] = e.Recipient.String()
	}
	return v
}
