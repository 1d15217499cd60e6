package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"

	"github.com/cenkalti/backoff"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// indexTemplate maps every filterable field as keyword so wildcard and term
// queries match whole values.
const indexTemplate = `{
  "index_patterns": ["%s-*"],
  "template": {
    "mappings": {
      "properties": {
        "time":                    {"type": "date"},
        "api_name":                {"type": "keyword"},
        "access_key":              {"type": "keyword"},
        "bucket":                  {"type": "keyword"},
        "object":                  {"type": "keyword"},
        "remote_host":             {"type": "keyword"},
        "request_id":              {"type": "keyword"},
        "user_agent":              {"type": "keyword"},
        "response_status":         {"type": "keyword"},
        "response_status_code":    {"type": "integer"},
        "request_content_length":  {"type": "long"},
        "response_content_length": {"type": "long"},
        "time_to_response_ns":     {"type": "long"}
      }
    }
  }
}`

type elasticAuditStore struct {
	*elasticsearchLogRepository
	client          *elasticsearch.Client
	bulkIndexer     esutil.BulkIndexer
	indexPrefix     string
	countSuccessful uint64
	countFailed     uint64
}

// NewElasticAuditBackend connects to Elasticsearch with retries, installs the
// index template and returns a backend that searches, stores and prunes
// audit records.
func NewElasticAuditBackend(lc fx.Lifecycle, cfg *config.Config) (repository.AuditBackend, error) {
	if len(cfg.Elasticsearch.Addresses) == 0 {
		log.Error().Msg("Elasticsearch addresses are not configured.")
		return nil, errors.New("elasticsearch configuration missing")
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: time.Second * 10,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	esCfg := elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Transport: transport,
	}

	var esClient *elasticsearch.Client
	var err error
	operation := func() error {
		esClient, err = elasticsearch.NewClient(esCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error creating the Elasticsearch client")
			return err
		}

		// Verify connection (ping)
		res, errPing := esClient.Info(
			esClient.Info.WithContext(context.Background()),
		)
		if errPing != nil {
			log.Warn().Err(errPing).Msg("Attempt failed: Error during Elasticsearch Info() call (transport level)")
			return errPing
		}
		defer res.Body.Close()
		if res.IsError() {
			errMsg := fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
			log.Warn().Err(errMsg).Msg("Attempt failed: Elasticsearch ping returned error status")
			return errMsg
		}
		log.Info().Str("server_info", res.String()).Msg("Elasticsearch client initialized and connection verified!")
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 2 * time.Second
	connectBackoff.MaxInterval = 15 * time.Second
	connectBackoff.MaxElapsedTime = 90 * time.Second

	log.Info().Msg("Attempting to connect to Elasticsearch with retries...")
	if err = backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Msg("Failed to connect to Elasticsearch after multiple retries")
		return nil, err
	}

	if err := ensureIndexTemplate(context.Background(), esClient, cfg.Elasticsearch.AuditIndex); err != nil {
		return nil, err
	}

	typedClient, err := elasticsearch.NewTypedClient(esCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Typed Elasticsearch Client")
		return nil, err
	}

	store := &elasticAuditStore{
		elasticsearchLogRepository: newElasticsearchLogRepository(typedClient, cfg.Elasticsearch.AuditIndex),
		client:                     esClient,
		indexPrefix:                cfg.Elasticsearch.AuditIndex,
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        esClient,
		Index:         store.getIndexName(time.Now()),
		NumWorkers:    cfg.Elasticsearch.BulkWorkers,
		FlushBytes:    cfg.Elasticsearch.FlushBytes,
		FlushInterval: cfg.Elasticsearch.FlushInterval,
		OnError: func(ctx context.Context, err error) {
			log.Error().Err(err).Msg("BulkIndexer error")
		},
		OnFlushStart: func(ctx context.Context) context.Context {
			log.Debug().Msg("BulkIndexer flush starting")
			return ctx
		},
		OnFlushEnd: func(ctx context.Context) {
			log.Debug().Msg("BulkIndexer flush ended")
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Error creating the BulkIndexer")
		return nil, err
	}
	store.bulkIndexer = bi
	log.Info().Msg("Elasticsearch BulkIndexer initialized")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Elasticsearch BulkIndexer...")
			return store.Close(ctx)
		},
	})

	return store, nil
}

func ensureIndexTemplate(ctx context.Context, es *elasticsearch.Client, prefix string) error {
	req := esapi.IndicesPutIndexTemplateRequest{
		Name: prefix + "-template",
		Body: strings.NewReader(fmt.Sprintf(indexTemplate, prefix)),
	}
	res, err := req.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("put index template: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("put index template returned %s", res.String())
	}
	log.Info().Str("template", req.Name).Msg("Ensured audit index template")
	return nil
}

// StoreRecords adds audit records to the bulk indexer, routed to the daily
// index of each record's own time.
func (s *elasticAuditStore) StoreRecords(ctx context.Context, records []model.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	currentFailed := atomic.LoadUint64(&s.countFailed)

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal audit record for Elasticsearch")
			atomic.AddUint64(&s.countFailed, 1)
			continue
		}

		err = s.bulkIndexer.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action: "index",
				Index:  s.getIndexName(record.Time),
				Body:   bytes.NewReader(data),
				OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
					atomic.AddUint64(&s.countSuccessful, 1)
				},
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					atomic.AddUint64(&s.countFailed, 1)
					if err != nil {
						log.Error().Err(err).Msg("Bulk index item failed")
					} else {
						log.Error().Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Bulk index item failed")
					}
				},
			},
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to add item to BulkIndexer")
			atomic.AddUint64(&s.countFailed, 1)
		}
	}
	log.Debug().Int("count", len(records)).Msg("Added audit records to Elasticsearch BulkIndexer queue")

	if atomic.LoadUint64(&s.countFailed) > currentFailed {
		return errors.New("one or more audit records failed during bulk indexing attempt")
	}

	return nil
}

func (s *elasticAuditStore) Close(ctx context.Context) error {
	log.Info().Msg("Attempting to close BulkIndexer...")
	err := s.bulkIndexer.Close(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error closing BulkIndexer")
	} else {
		log.Info().Msg("BulkIndexer closed.")
	}

	stats := s.bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("added", stats.NumAdded).
		Uint64("flushed", stats.NumFlushed).
		Uint64("failed", stats.NumFailed).
		Uint64("requests", stats.NumRequests).
		Msg("Elasticsearch BulkIndexer final stats")

	log.Info().
		Uint64("callback_successful", atomic.LoadUint64(&s.countSuccessful)).
		Uint64("callback_failed", atomic.LoadUint64(&s.countFailed)).
		Msg("Elasticsearch BulkIndexer final callback stats")

	return err
}

// getIndexName returns the daily index for t, e.g. "auditlogs-2024-05-01".
func (s *elasticAuditStore) getIndexName(t time.Time) string {
	return indexName(s.indexPrefix, t)
}

func indexName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.UTC().Format("2006-01-02"))
}
