package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSChannel publishes order messages to a per-destination subject. The
// flush after publish is the "accepted" signal; nothing downstream of the
// broker is confirmed.
type NATSChannel struct {
	nc            *nats.Conn
	subjectPrefix string
	flushTimeout  time.Duration
}

// Compile-time check that NATSChannel implements Channel.
var _ Channel = (*NATSChannel)(nil)

// NewNATSChannel creates a channel publishing under the given subject
// prefix (e.g. "orders" publishes to "orders.<destination>").
func NewNATSChannel(nc *nats.Conn, subjectPrefix string) *NATSChannel {
	if subjectPrefix == "" {
		subjectPrefix = "orders"
	}
	return &NATSChannel{
		nc:            nc,
		subjectPrefix: subjectPrefix,
		flushTimeout:  5 * time.Second,
	}
}

// Send publishes the payload and waits for the broker to accept it.
func (c *NATSChannel) Send(ctx context.Context, destination, payload string) error {
	subject := fmt.Sprintf("%s.%s", c.subjectPrefix, destination)
	if err := c.nc.Publish(subject, []byte(payload)); err != nil {
		return fmt.Errorf("failed to publish order message: %w", err)
	}

	timeout := c.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.nc.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("order message not accepted by broker: %w", err)
	}
	return nil
}
