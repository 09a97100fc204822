// Package kafka publishes evaluation lifecycle events so downstream
// consumers (grading dashboards, training analytics) can react to completed
// evaluations without polling the API.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

var (
	ErrPublisherClosed = errors.New(errors.ErrCodeInternal, "publisher closed")
)

// EventKind labels what was evaluated.
type EventKind string

const (
	EventNovelty       EventKind = "novelty"
	EventInventiveStep EventKind = "inventive_step"
)

// EvaluationEvent is the wire payload emitted after every completed
// evaluation.
type EvaluationEvent struct {
	EvaluationID   string    `json:"evaluation_id"`
	Kind           EventKind `json:"kind"`
	Decision       bool      `json:"decision"`
	Score          float64   `json:"score"`
	TechnicalField string    `json:"technical_field,omitempty"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes evaluation events to one Kafka topic, keyed by
// evaluation id so per-evaluation ordering is preserved within a partition.
type Publisher struct {
	writer WriterInterface
	topic  string
	logger logging.Logger
	closed atomic.Bool

	published atomic.Int64
	failed    atomic.Int64
}

// NewPublisher builds a publisher from cfg.
func NewPublisher(cfg config.KafkaConfig, logger logging.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers must not be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.InvalidParam("kafka topic must not be empty")
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
	}

	return newPublisherWithWriter(writer, cfg.Topic, logger), nil
}

// newPublisherWithWriter is the test seam for injecting a fake writer.
func newPublisherWithWriter(writer WriterInterface, topic string, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{
		writer: writer,
		topic:  topic,
		logger: logger.Named("messaging.kafka"),
	}
}

// Publish writes one evaluation event.  A zero EvaluatedAt is stamped with
// the current time.
func (p *Publisher) Publish(ctx context.Context, event EvaluationEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	if event.EvaluationID == "" {
		return errors.InvalidParam("evaluation id must not be empty")
	}
	if event.EvaluatedAt.IsZero() {
		event.EvaluatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode evaluation event")
	}

	msg := kafka.Message{
		Key:   []byte(event.EvaluationID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		p.logger.Error("failed to publish evaluation event",
			logging.String("evaluation_id", event.EvaluationID),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "kafka publish failed")
	}

	p.published.Add(1)
	p.logger.Debug("evaluation event published",
		logging.String("evaluation_id", event.EvaluationID),
		logging.String("kind", string(event.Kind)))
	return nil
}

// Stats reports publish counters.
func (p *Publisher) Stats() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}

// Close flushes and shuts the underlying writer.  Publish calls after Close
// fail with ErrPublisherClosed.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
