// internal/adapter/eventbus/publisher.go

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"trendpulse/internal/domain/trend"
)

// Conn is the subset of *nats.Conn used to publish and subscribe
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// SummarySubject returns the subject summaries are published on
func SummarySubject(topic string) string {
	return fmt.Sprintf("%s.summary", topic)
}

// Publisher sends finished summaries to the event bus
type Publisher struct {
	conn    Conn
	subject string
}

// NewPublisher creates a publisher for the given events topic
func NewPublisher(conn Conn, topic string) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: SummarySubject(topic),
	}
}

// Subject returns the subject summaries are published on
func (p *Publisher) Subject() string {
	return p.subject
}

// Publish serializes the summary and publishes it
func (p *Publisher) Publish(ctx context.Context, summary trend.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error marshaling summary: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("error publishing summary to %s: %w", p.subject, err)
	}
	return nil
}
