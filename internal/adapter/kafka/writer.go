package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fire-detection-etl/internal/config"
	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// Writer produces processed detections to a Kafka topic.
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
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple detections to the sink Kafka
// topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, detections []domain.Detection) error {
	if len(detections) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(detections))
	for i := range detections {
		msg, err := serializeToMessage(detections[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Detection into a Kafka message. The satellite
// and classification headers let downstream consumers filter without
// deserializing the payload.
func serializeToMessage(det domain.Detection) (kafkago.Message, error) {
	data, err := json.Marshal(det)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize detection: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "detection_satellite", Value: []byte(det.Satellite)},
		{Key: "processed_at", Value: []byte(det.ProcessedAt.Format(time.RFC3339))},
	}
	if det.Score != nil {
		headers = append(headers, kafkago.Header{
			Key:   "predicted_fire",
			Value: []byte(strconv.FormatBool(det.Score.ForestFire)),
		})
	}
	return kafkago.Message{
		Key:     []byte(det.ID),
		Value:   data,
		Headers: headers,
	}, nil
}
