package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

const (
	// StreamName is the name of the exchanges stream.
	StreamName = "EXCHANGES"

	// SubjectPrefix is the prefix for all exchange subjects.
	SubjectPrefix = "exchange"
)

// Publisher appends exchange records to the EXCHANGES stream.
type Publisher struct {
	client *Client
}

// NewPublisher creates a new exchange publisher.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the exchanges stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "Resolved inbound/outbound message exchanges",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// ExchangeSubject returns the subject for one resolved exchange.
func ExchangeSubject(tenantID, pageID string, outcome model.ResponseType) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, tenantID, pageID, outcome)
}

// PublishExchange publishes a resolved exchange record.
func (p *Publisher) PublishExchange(ctx context.Context, rec *model.HistoryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}

	subject := ExchangeSubject(rec.TenantID, rec.PageID, rec.ResponseType)
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish exchange: %w", err)
	}
	return nil
}
