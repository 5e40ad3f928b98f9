package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// NATSSubscriber subscribes to the transaction record subject and feeds
// raw records into the engine loop via recordChan. A single subject,
// single consumer, and single channel keep arrival order intact, which
// is what guarantees per-client ordering downstream.
type NATSSubscriber struct {
	js         jetstream.JetStream
	recordChan chan<- RawRecord
	consumer   jetstream.ConsumeContext
}

// SubjectConfig names the JetStream pieces for the record stream.
type SubjectConfig struct {
	Subject      string
	ConsumerName string
	StreamName   string
}

// DefaultSubject returns the standard record stream configuration.
func DefaultSubject() SubjectConfig {
	return SubjectConfig{
		Subject:      "txn.records.>",
		ConsumerName: "txn-engine",
		StreamName:   "TXN_RECORDS",
	}
}

func NewNATSSubscriber(js jetstream.JetStream, recordChan chan<- RawRecord) *NATSSubscriber {
	return &NATSSubscriber{
		js:         js,
		recordChan: recordChan,
	}
}

// EnsureStream creates the record stream if it does not exist.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg SubjectConfig) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{cfg.Subject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// Subscribe creates the durable consumer and starts delivery. Messages
// use explicit ACK so a crash mid-record is redelivered and absorbed
// by the idempotency check.
func (ns *NATSSubscriber) Subscribe(ctx context.Context, cfg SubjectConfig) error {
	consumer, err := ns.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       cfg.ConsumerName,
		FilterSubject: cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", cfg.ConsumerName, err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		ns.recordChan <- RawRecord{
			Subject:   msg.Subject(),
			Data:      msg.Data(),
			Timestamp: time.Now(),
			AckFunc:   func() { msg.Ack() },
			NakFunc:   func() { msg.Nak() },
		}
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", cfg.Subject, err)
	}

	ns.consumer = consumeCtx
	return nil
}

// Stop halts delivery. In-flight records already on the channel are
// still processed by the engine loop.
func (ns *NATSSubscriber) Stop() {
	if ns.consumer != nil {
		ns.consumer.Stop()
	}
}
