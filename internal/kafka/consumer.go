package kafka

import (
	"context"
	"encoding/json"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

// AuditConsumer reads audit records from the ingest topic. Offsets are only
// committed explicitly.
type AuditConsumer interface {
	FetchMessage(ctx context.Context) (*model.AuditRecord, kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaAuditConsumer struct {
	reader *kafka.Reader
}

func NewKafkaAuditConsumer(lc fx.Lifecycle, cfg *config.Config) (AuditConsumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topic:          cfg.Kafka.AuditTopic,
		MinBytes:       10e3,            // 10KB
		MaxBytes:       10e6,            // 10MB
		MaxWait:        5 * time.Second, // Wait up to 5 seconds for data
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	c := &kafkaAuditConsumer{
		reader: reader,
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Str("group", cfg.Kafka.ConsumerGroup).Msg("Closing Kafka consumer")
			return c.Close()
		},
	})
	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.AuditTopic).
		Str("group", cfg.Kafka.ConsumerGroup).
		Msg("Kafka consumer initialized")
	return c, nil
}

// FetchMessage returns the raw message even when decoding fails so the
// caller can commit past it.
func (c *kafkaAuditConsumer) FetchMessage(ctx context.Context) (*model.AuditRecord, kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		log.Debug().Msg("Fail when fetching Kafka message.")
		return nil, kafka.Message{}, err
	}
	log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Fetched message from Kafka")
	var record model.AuditRecord
	if err := json.Unmarshal(msg.Value, &record); err != nil {
		log.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal Kafka message value")
		return nil, msg, err
	}
	return &record, msg, nil
}

func (c *kafkaAuditConsumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	err := c.reader.CommitMessages(ctx, msgs...)
	if err != nil {
		log.Error().Err(err).Int("count", len(msgs)).Msg("Failed to commit Kafka messages")
		return err
	}
	log.Debug().Int("count", len(msgs)).Int64("last_offset", msgs[len(msgs)-1].Offset).Msg("Committed Kafka messages")
	return nil
}

func (c *kafkaAuditConsumer) Close() error {
	return c.reader.Close()
}
