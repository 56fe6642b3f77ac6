package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published after the chat-set snapshot changes.
const (
	SubjectSnapshotReplaced = "leadlens.snapshot.replaced"
	SubjectSnapshotCleared  = "leadlens.snapshot.cleared"
)

// SnapshotReplaced is emitted after a successful ingestion.
type SnapshotReplaced struct {
	SnapshotID string    `json:"snapshot_id"`
	Chats      int       `json:"chats"`
	Messages   int       `json:"messages"`
	HighValue  int       `json:"high_value"`
	Timestamp  time.Time `json:"timestamp"`
}

// SnapshotCleared is emitted after the chat set is deleted.
type SnapshotCleared struct {
	PreviousID string    `json:"previous_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client publishes snapshot events as JSON. It never subscribes.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("leadlens"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Client{conn: nc, logger: logger}, nil
}

// Publish marshals evt and sends it on subject.
func (c *Client) Publish(subject string, evt any) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Connected reports whether the underlying connection is up.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close flushes buffered events before closing the connection.
func (c *Client) Close() {
	if err := c.conn.FlushTimeout(2 * time.Second); err != nil {
		c.logger.Warn("nats flush on close", "error", err)
	}
	c.conn.Close()
}
