package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const channel = "broadcast"

// Publisher broadcasts domain events over Redis pub/sub. Publishing is
// best-effort: failures are logged and never affect the request outcome.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) {
	if p == nil || p.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("events: marshal %s: %v", eventType, err)
		return
	}
	if err := p.rdb.Publish(ctx, channel, string(data)).Err(); err != nil {
		log.Printf("events: publish %s: %v", eventType, err)
	}
}
