package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fire-detection-etl/internal/config"
	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// Reader consumes raw detection messages from the source topic as part of a
// consumer group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	logger        *slog.Logger
	flushInterval time.Duration
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{
		reader:        r,
		logger:        logger,
		flushInterval: cfg.BatchFlushInterval,
	}
}

// ExtractBatch blocks until at least one message arrives, then keeps reading
// until the batch is full or the flush interval expires. Offsets are committed
// individually through each event's Commit callback, never here.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]domain.RawEvent, 0, batchSize)
	batch = append(batch, r.mapMessageToRawEvent(first))

	flushCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(flushCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break // flush interval expired, ship what we have
			}
			if ctx.Err() != nil {
				break
			}
			return batch, err
		}
		batch = append(batch, r.mapMessageToRawEvent(msg))
	}

	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawEvent converts a Kafka message into a domain RawEvent with a
// commit callback bound to this reader's consumer group.
func (r *Reader) mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	raw := mapMessageToRawEvent(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw
}

func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
