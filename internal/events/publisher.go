// Package events publishes run lifecycle events over Redis pub/sub so other
// services can follow scraping activity without polling the status endpoint.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const Channel = "cottonscout:jobs:events"

type EventType string

const (
	EventJobStarted      EventType = "job.started"
	EventJobCompleted    EventType = "job.completed"
	EventJobFailed       EventType = "job.failed"
	EventJobStopping     EventType = "job.stopping"
	EventRetailerStarted EventType = "retailer.started"
	EventRetailerDone    EventType = "retailer.done"
	EventRetailerFailed  EventType = "retailer.failed"
	EventProductFound    EventType = "product.found"
	EventSnapshotSaved   EventType = "snapshot.saved"
)

type Event struct {
	Type      EventType      `json:"type"`
	JobID     string         `json:"job_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Publisher fans run events out to Redis. A nil Publisher is valid and drops
// every event, so callers never branch on whether eventing is configured.
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

func NewPublisher(ctx context.Context, redisURL string, logger *slog.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Publisher{
		client: client,
		logger: logger.With("component", "events"),
	}, nil
}

// Publish sends one event. Publish failures are logged and swallowed; the
// run never fails because an observer missed an event.
func (p *Publisher) Publish(ctx context.Context, eventType EventType, jobID string, payload map[string]any) {
	if p == nil {
		return
	}

	event := Event{
		Type:      eventType,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("encode event", "type", eventType, "error", err)
		return
	}

	if err := p.client.Publish(ctx, Channel, data).Err(); err != nil {
		p.logger.Warn("publish event", "type", eventType, "error", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
