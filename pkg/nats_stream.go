package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStreamConfig describes the stream and durable consumer behind a NATSStream.
type NATSStreamConfig struct {
	StreamName   string        // e.g. "FIELD_COLLECTIONS"
	Topic        string        // subject captured by the stream
	ConsumerName string        // durable name, one per consuming service
	MaxAge       time.Duration // retention
	MaxDeliver   int           // 0 leaves the server default
	AckWait      time.Duration // 0 leaves the server default
}

// NATSStream consumes one subject through a JetStream durable consumer, so
// messages published while the service was down are delivered on restart.
// Handler errors are nacked and redelivered until MaxDeliver is reached.
type NATSStream struct {
	consumer jetstream.Consumer
	consume  jetstream.ConsumeContext
	logger   aqm.Logger
}

// NewNATSStream creates or updates the stream and its consumer on conn. The
// caller keeps ownership of conn.
func NewNATSStream(ctx context.Context, conn *nats.Conn, cfg NATSStreamConfig, logger aqm.Logger) (*NATSStream, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("cannot create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Topic},
		MaxAge:   cfg.MaxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create stream %s: %w", cfg.StreamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       cfg.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: cfg.Topic,
		MaxDeliver:    cfg.MaxDeliver,
		AckWait:       cfg.AckWait,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create consumer %s: %w", cfg.ConsumerName, err)
	}

	return &NATSStream{consumer: consumer, logger: logger}, nil
}

// Subscribe implements events.Subscriber. The subject is fixed by the
// consumer filter, so topic is informational.
func (s *NATSStream) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	cc, err := s.consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(ctx, msg.Data()); err != nil {
			meta, _ := msg.Metadata()
			delivered := uint64(0)
			if meta != nil {
				delivered = meta.NumDelivered
			}
			s.logger.Error("stream handler failed, requesting redelivery",
				"subject", msg.Subject(), "delivered", delivered, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("cannot consume %s: %w", topic, err)
	}
	s.consume = cc
	return nil
}

// Close stops consumption. The connection is closed by its owner.
func (s *NATSStream) Close() error {
	if s.consume != nil {
		s.consume.Stop()
	}
	return nil
}

var _ events.Subscriber = (*NATSStream)(nil)
