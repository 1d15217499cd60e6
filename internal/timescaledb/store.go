package timescaledb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type timescaleAuditStore struct {
	pool      *pgxpool.Pool
	tableName string
}

const (
	auditRecordsTableName = "audit_records"
	colTime               = "time"
)

// recordColumns is the column order used by CopyFrom and SELECT.
var recordColumns = []string{
	colTime,
	"api_name",
	"access_key",
	"bucket",
	"object",
	"remote_host",
	"request_id",
	"user_agent",
	"response_status",
	"response_status_code",
	"request_content_length",
	"response_content_length",
	"time_to_response_ns",
}

// NewTimescaleAuditBackend opens the pool, makes sure the hypertable exists
// and returns a backend storing audit records in TimescaleDB.
func NewTimescaleAuditBackend(lc fx.Lifecycle, cfg *config.Config) (repository.AuditBackend, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.TimescaleDB.DSN)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse TimescaleDB DSN")
		return nil, fmt.Errorf("invalid TimescaleDB DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create connection pool to TimescaleDB")
		return nil, fmt.Errorf("failed to connect to TimescaleDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = pool.Ping(pingCtx)
	if err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ping TimescaleDB")
		return nil, fmt.Errorf("failed to ping TimescaleDB: %w", err)
	}
	log.Info().Msg("TimescaleDB connection pool created and verified.")

	store := &timescaleAuditStore{
		pool:      pool,
		tableName: auditRecordsTableName,
	}

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSetup()
	err = store.ensureHypertable(setupCtx)
	if err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ensure TimescaleDB hypertable exists")
		return nil, fmt.Errorf("failed ensuring hypertable: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing TimescaleDB connection pool...")
			store.Close()
			return nil
		},
	})

	return store, nil
}

func (s *timescaleAuditStore) ensureHypertable(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			time TIMESTAMPTZ NOT NULL,
			api_name TEXT NOT NULL DEFAULT '',
			access_key TEXT NOT NULL DEFAULT '',
			bucket TEXT NOT NULL DEFAULT '',
			object TEXT NOT NULL DEFAULT '',
			remote_host TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			response_status TEXT NOT NULL DEFAULT '',
			response_status_code INTEGER NOT NULL DEFAULT 0,
			request_content_length BIGINT NOT NULL DEFAULT 0,
			response_content_length BIGINT NOT NULL DEFAULT 0,
			time_to_response_ns BIGINT NOT NULL DEFAULT 0
		);`, s.tableName)

	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create base table %s: %w", s.tableName, err)
	}
	log.Info().Str("table", s.tableName).Msg("Ensured base table exists.")

	checkHyperSQL := `SELECT EXISTS (
        SELECT 1 FROM timescaledb_information.hypertables WHERE hypertable_name = $1
    );`
	var isHypertable bool
	_ = s.pool.QueryRow(ctx, checkHyperSQL, s.tableName).Scan(&isHypertable)

	if !isHypertable {
		log.Info().Str("table", s.tableName).Msg("Table is not a hypertable, attempting to create...")
		_, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb;")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to ensure timescaledb extension exists (permission issue?). Trying to proceed...")
		}

		createHyperSQL := fmt.Sprintf(
			"SELECT create_hypertable('%s', '%s', if_not_exists => TRUE, chunk_time_interval => INTERVAL '1 day');",
			s.tableName,
			colTime,
		)
		_, err = s.pool.Exec(ctx, createHyperSQL)
		if err != nil && !strings.Contains(err.Error(), "already a hypertable") {
			return fmt.Errorf("failed to create hypertable %s: %w", s.tableName, err)
		}
		log.Info().Str("table", s.tableName).Msg("Successfully ensured hypertable.")
	} else {
		log.Info().Str("table", s.tableName).Msg("Table is already a hypertable.")
	}

	indexSQL := fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS idx_%s_bucket_time ON %s (bucket, time DESC);
        CREATE INDEX IF NOT EXISTS idx_%s_api_time ON %s (api_name, time DESC);
        CREATE INDEX IF NOT EXISTS idx_%s_request_id ON %s (request_id);
    `, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)
	_, err := s.pool.Exec(ctx, indexSQL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes on audit table (continuing)")
	} else {
		log.Info().Str("table", s.tableName).Msg("Ensured indexes exist on audit table.")
	}

	return nil
}

// StoreRecords bulk inserts audit records with COPY.
func (s *timescaleAuditStore) StoreRecords(ctx context.Context, records []model.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	source := pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
		r := records[i]
		return []interface{}{
			r.Time.UTC(), r.APIName, r.AccessKey, r.Bucket, r.Object, r.RemoteHost,
			r.RequestID, r.UserAgent, r.ResponseStatus, r.ResponseStatusCode,
			r.RequestContentLength, r.ResponseContentLength, r.TimeToResponseNs,
		}, nil
	})

	copyCount, err := s.pool.CopyFrom(ctx, pgx.Identifier{s.tableName}, recordColumns, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bulk insert audit records into TimescaleDB")
		return fmt.Errorf("timescaledb copyfrom failed: %w", err)
	}

	if int(copyCount) != len(records) {
		log.Warn().Int64("inserted", copyCount).Int("expected", len(records)).Msg("TimescaleDB CopyFrom record count mismatch")
	} else {
		log.Debug().Int64("count", copyCount).Msg("Successfully inserted audit records into TimescaleDB")
	}
	return nil
}

func (s *timescaleAuditStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE time < $1", s.tableName), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("timescaledb prune failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *timescaleAuditStore) Close() {
	s.pool.Close()
}
