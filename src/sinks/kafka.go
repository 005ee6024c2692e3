package sinks

import (
	"context"
	"encoding/json"
	"time"

	"market-breadth/src/logger"
	"market-breadth/src/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// -----------------------------------------------------------------------------
// KafkaSink writes one message per snapshot, keyed by market date.
// -----------------------------------------------------------------------------

type KafkaSink struct {
	Writer MessageWriter
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewKafkaSink(cfg models.MKafkaSinkConfig, log *logger.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaSink{Writer: w, Logger: log}
}

func (k *KafkaSink) Name() string { return "kafka" }

// -----------------------------------------------------------------------------

func (k *KafkaSink) Publish(ctx context.Context, s models.MBreadthSnapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return k.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.Date()),
		Value: payload,
		Time:  s.CapturedAt,
	})
}

// -----------------------------------------------------------------------------

func (k *KafkaSink) Close() error {
	return k.Writer.Close()
}
