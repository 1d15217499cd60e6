package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"audit-log-search/config"
	"audit-log-search/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

type AuditProducer interface {
	Produce(ctx context.Context, records []model.AuditRecord) error
	Close() error
}

type kafkaAuditProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaAuditProducer(lc fx.Lifecycle, cfg *config.Config) (AuditProducer, error) {
	if !cfg.KafkaEnabled() {
		log.Error().Msg("Kafka brokers or audit topic is not configured.")
		return nil, errors.New("kafka configuration missing")
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.AuditTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.Ingest.BatchSize,
		BatchTimeout: cfg.Ingest.MaxBatchWait,
	})
	p := &kafkaAuditProducer{
		writer: writer,
		topic:  cfg.Kafka.AuditTopic,
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka producer")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.AuditTopic).Msg("Kafka producer initialized")
	return p, nil
}

// Produce writes one message per record keyed by bucket, so a bucket's
// records keep their order within a partition.
func (p *kafkaAuditProducer) Produce(ctx context.Context, records []model.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(records))

	for _, record := range records {
		value, err := json.Marshal(record)
		if err != nil {
			log.Error().Err(err).Str("request_id", record.RequestID).Msg("Failed to marshal audit record for Kafka")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(record.Bucket),
			Value: value,
		})
	}
	if len(messages) == 0 {
		log.Warn().Msg("No valid messages to produce.")
		return nil
	}

	err := p.writer.WriteMessages(ctx, messages...)
	if err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write messages to Kafka")
		return err
	}

	log.Debug().Int("message_count", len(messages)).Str("topic", p.topic).Msg("Successfully produced messages to Kafka")

	return nil
}

func (p *kafkaAuditProducer) Close() error {
	return p.writer.Close()
}
