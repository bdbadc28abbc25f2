package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"photo-wall/internal/config"
	"photo-wall/internal/core/domain"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher sends upload events to JetStream
type Publisher struct {
	logger  *slog.Logger
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to NATS and makes sure the upload stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	conn, js, err := connect(cfg, "photo-wall-api", logger)
	if err != nil {
		return nil, err
	}
	if err := ensureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		logger:  logger,
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
	}, nil
}

// PublishUpload publishes event and waits for the stream acknowledgement.
// The object key doubles as message ID so a retried publish is deduplicated.
func (p *Publisher) PublishUpload(ctx context.Context, event domain.UploadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal upload event: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(event.Key))
	if err != nil {
		return fmt.Errorf("failed to publish upload event: %w", err)
	}
	p.logger.Debug("upload event published", "key", event.Key, "stream", ack.Stream, "seq", ack.Sequence)
	return nil
}

// Close drains pending publications and closes the connection
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
