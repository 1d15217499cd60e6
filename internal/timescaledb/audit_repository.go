package timescaledb

import (
	"context"
	"fmt"
	"strings"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
	"audit-log-search/internal/pattern"

	"github.com/rs/zerolog/log"
)

// buildSearchSQL renders the page query and its arguments. Filter patterns
// become LIKE expressions with '\' as escape character.
func buildSearchSQL(table string, req dto.LogSearchRequest) (string, []interface{}) {
	whereClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	if !req.TimeRange.Start.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("time >= $%d", argCounter))
		args = append(args, req.TimeRange.Start.UTC())
		argCounter++
	}
	if !req.TimeRange.End.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("time <= $%d", argCounter))
		args = append(args, req.TimeRange.End.UTC())
		argCounter++
	}

	for _, field := range dto.FilterFields {
		raw := req.Filter[field]
		if raw == "" {
			continue
		}
		p := pattern.Parse(raw)
		if p.HasWildcards() {
			whereClauses = append(whereClauses, fmt.Sprintf(`%s LIKE $%d ESCAPE '\'`, field, argCounter))
			args = append(args, p.Like())
		} else {
			whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", field, argCounter))
			args = append(args, p.Literal())
		}
		argCounter++
	}

	direction := "DESC"
	if req.Order == dto.OrderTimeAsc {
		direction = "ASC"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(recordColumns, ", "), table)
	if len(whereClauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(whereClauses, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY time %s LIMIT $%d OFFSET $%d", direction, argCounter, argCounter+1)
	args = append(args, req.PageSize, req.PageNo*req.PageSize)

	return sb.String(), args
}

func (s *timescaleAuditStore) Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	if err := logquery.CheckWindow(req.PageNo, req.PageSize); err != nil {
		return nil, err
	}
	query, args := buildSearchSQL(s.tableName, req)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to query audit records")
		return nil, fmt.Errorf("timescaledb search failed: %w", err)
	}
	defer rows.Close()

	records := make([]model.AuditRecord, 0, req.PageSize)
	for rows.Next() {
		var r model.AuditRecord
		if err := rows.Scan(
			&r.Time, &r.APIName, &r.AccessKey, &r.Bucket, &r.Object, &r.RemoteHost,
			&r.RequestID, &r.UserAgent, &r.ResponseStatus, &r.ResponseStatusCode,
			&r.RequestContentLength, &r.ResponseContentLength, &r.TimeToResponseNs,
		); err != nil {
			log.Error().Err(err).Msg("Failed to scan audit record row")
			return nil, fmt.Errorf("timescaledb scan failed: %w", err)
		}
		r.Time = r.Time.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("timescaledb rows error: %w", err)
	}

	log.Debug().Int("page", req.PageNo).Int("returned", len(records)).Msg("TimescaleDB search successful")
	return &dto.LogSearchResponse{Results: records}, nil
}
