package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-intel-service/internal/config"
	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Header keys set on every produced assessment.
const (
	HeaderStatus      = "status"
	HeaderGeneratedAt = "generated_at"
)

// Writer produces assessments to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes assessments in one WriteMessages call, keyed by
// request id so reruns of a request land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessments))
	for i := range assessments {
		msg, err := serializeToMessage(assessments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write assessments: %w", err)
	}
	w.logger.Debug("assessments written", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(a domain.Assessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment %s: %w", a.RequestID, err)
	}
	return kafkago.Message{
		Key:   []byte(a.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderStatus, Value: []byte(a.Status)},
			{Key: HeaderGeneratedAt, Value: []byte(a.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
