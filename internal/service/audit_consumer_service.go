package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/kafka"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type AuditConsumerService interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

type auditConsumerService struct {
	consumer    kafka.AuditConsumer
	writer      repository.AuditWriter
	batchSize   int           // How many Kafka messages to process at once
	maxWaitTime time.Duration // Max time to wait for batchSize messages
	retryDelay  time.Duration
}

func NewAuditConsumerService(
	consumer kafka.AuditConsumer,
	writer repository.AuditWriter,
	cfg *config.Config,
) AuditConsumerService {
	batchSize := cfg.Ingest.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	maxWaitTime := cfg.Ingest.MaxBatchWait
	if maxWaitTime <= 0 {
		maxWaitTime = 5 * time.Second
	}

	return &auditConsumerService{
		consumer:    consumer,
		writer:      writer,
		batchSize:   batchSize,
		maxWaitTime: maxWaitTime,
		retryDelay:  time.Second,
	}
}

func (s *auditConsumerService) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Msg("Starting Audit Consumer Service loop...")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Audit Consumer Service loop stopping due to context cancellation.")
			return
		default:
		}

		err := s.processBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Info().Msg("Context cancelled during batch processing.")
				return
			}
			log.Error().Err(err).Msg("Error processing consumer batch")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
		}
	}
}

// processBatch collects up to batchSize messages or whatever arrived within
// maxWaitTime, stores the decodable ones and commits all of them. Nothing is
// committed when the store fails, so the batch is redelivered.
func (s *auditConsumerService) processBatch(ctx context.Context) error {
	records := make([]model.AuditRecord, 0, s.batchSize)
	messages := make([]kafkaGo.Message, 0, s.batchSize)
	deadline := time.Now().Add(s.maxWaitTime)

	for len(messages) < s.batchSize {
		if err := ctx.Err(); err != nil {
			log.Info().Msg("Context cancelled while building consumer batch.")
			return err
		}

		fetchCtx, cancel := context.WithDeadline(ctx, deadline)
		record, msg, err := s.consumer.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				log.Debug().Int("batch_size", len(messages)).Msg("Max wait time reached for batch, processing partial batch.")
				break
			}
			// undecodable message: commit past it without storing
			if msg.Topic != "" {
				log.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping undecodable audit message.")
				messages = append(messages, msg)
				continue
			}
			log.Error().Err(err).Msg("Failed to fetch message, stopping batch accumulation for now.")
			return fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		records = append(records, *record)
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		log.Debug().Msg("No messages in batch to process.")
		return nil
	}

	if err := s.writer.StoreRecords(ctx, records); err != nil {
		log.Error().Err(err).Msg("Failed to store audit records")
		return fmt.Errorf("failed storing audit records: %w", err)
	}

	if err := s.consumer.CommitMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Msg("Failed to commit Kafka messages after successful storage")
		return fmt.Errorf("failed committing kafka messages: %w", err)
	}
	log.Info().Int("batch_size", len(messages)).Int("stored", len(records)).Msg("Successfully processed and committed batch.")
	return nil
}
