package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
)

const defaultReconnectWait = 2 * time.Second

// NATSOptions are the connection settings shared by the NATS adapters.
type NATSOptions struct {
	URL           string
	Name          string // client name reported to the server
	ReconnectWait time.Duration
}

// ConnectNATS dials the server and keeps reconnecting for the life of the process.
func ConnectNATS(opts NATSOptions, logger aqm.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	wait := opts.ReconnectWait
	if wait <= 0 {
		wait = defaultReconnectWait
	}

	conn, err := nats.Connect(opts.URL,
		nats.Name(opts.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(wait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Info("NATS disconnected", "client", opts.Name, "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "client", opts.Name, "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to NATS at %s: %w", opts.URL, err)
	}
	return conn, nil
}

// NATSBus publishes and subscribes on core NATS over one connection, which it owns.
type NATSBus struct {
	conn   *nats.Conn
	logger aqm.Logger
}

func NewNATSBus(conn *nats.Conn, logger aqm.Logger) *NATSBus {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &NATSBus{conn: conn, logger: logger}
}

func (b *NATSBus) Publish(ctx context.Context, topic string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.conn.Publish(topic, msg)
}

// Subscribe delivers each message to handler. Core NATS has no redelivery, so
// handler errors are only logged.
func (b *NATSBus) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	_, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			b.logger.Error("message handler failed", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cannot subscribe to %s: %w", topic, err)
	}
	return nil
}

// Conn exposes the connection so a stream consumer can share it.
func (b *NATSBus) Conn() *nats.Conn {
	return b.conn
}

// Close lets in-flight handlers finish and flushes pending publishes before
// closing the connection.
func (b *NATSBus) Close() error {
	if err := b.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		b.conn.Close()
		return fmt.Errorf("cannot drain NATS connection: %w", err)
	}
	return nil
}

var (
	_ events.Publisher  = (*NATSBus)(nil)
	_ events.Subscriber = (*NATSBus)(nil)
)
