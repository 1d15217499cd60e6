package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
	"audit-log-search/internal/pattern"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/deletebyquery"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/rs/zerolog/log"
)

const timeField = "time"

type elasticsearchLogRepository struct {
	esTypedClient *elasticsearch.TypedClient
	indexPrefix   string
}

func newElasticsearchLogRepository(typedClient *elasticsearch.TypedClient, indexPrefix string) *elasticsearchLogRepository {
	return &elasticsearchLogRepository{
		esTypedClient: typedClient,
		indexPrefix:   indexPrefix,
	}
}

func (r *elasticsearchLogRepository) indexPattern() string {
	return fmt.Sprintf("%s-*", r.indexPrefix)
}

// buildQuery turns the filter and time range into a bool/filter query.
func buildQuery(req dto.LogSearchRequest) *types.Query {
	queryParts := []types.Query{}

	if rng := timeRangeQuery(req.TimeRange); rng != nil {
		queryParts = append(queryParts, *rng)
	}

	for _, field := range dto.FilterFields {
		raw := req.Filter[field]
		if raw == "" {
			continue
		}
		p := pattern.Parse(raw)
		if !p.HasWildcards() {
			queryParts = append(queryParts, types.Query{
				Term: map[string]types.TermQuery{
					field: {Value: p.Literal()},
				},
			})
			continue
		}
		wildcard := p.Wildcard()
		queryParts = append(queryParts, types.Query{
			Wildcard: map[string]types.WildcardQuery{
				field: {Value: &wildcard},
			},
		})
	}

	if len(queryParts) == 0 {
		return &types.Query{MatchAll: &types.MatchAllQuery{}}
	}
	return &types.Query{
		Bool: &types.BoolQuery{
			Filter: queryParts,
		},
	}
}

func timeRangeQuery(tr dto.TimeRange) *types.Query {
	if tr.Start.IsZero() && tr.End.IsZero() {
		return nil
	}
	rng := types.DateRangeQuery{}
	if !tr.Start.IsZero() {
		start := logquery.FormatTime(tr.Start)
		rng.Gte = &start
	}
	if !tr.End.IsZero() {
		end := logquery.FormatTime(tr.End)
		rng.Lte = &end
	}
	return &types.Query{
		Range: map[string]types.RangeQuery{
			timeField: rng,
		},
	}
}

// Search pages with from/size, so a page must end within the index
// max_result_window.
func (r *elasticsearchLogRepository) Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	if err := logquery.CheckWindow(req.PageNo, req.PageSize); err != nil {
		return nil, err
	}
	from := req.PageNo * req.PageSize
	order := sortorder.Desc
	if req.Order == dto.OrderTimeAsc {
		order = sortorder.Asc
	}

	searchRequest := &search.Request{
		Query: buildQuery(req),
		Size:  &req.PageSize,
		From:  &from,
		Sort: []types.SortCombinations{
			types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					timeField: {Order: &order},
				},
			},
		},
	}

	res, err := r.esTypedClient.Search().
		Index(r.indexPattern()).
		Request(searchRequest).
		Do(ctx)

	if err != nil {
		log.Error().Err(err).Msg("Error executing Elasticsearch search via TypedClient")
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}

	records := make([]model.AuditRecord, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var record model.AuditRecord
		if hit.Source_ != nil {
			if err := json.Unmarshal(hit.Source_, &record); err != nil {
				log.Error().Err(err).Msg("Error unmarshalling Elasticsearch hit source")
				continue
			}
			records = append(records, record)
		}
	}

	log.Debug().Int("page", req.PageNo).Int("returned_hits", len(records)).Msg("Elasticsearch search successful")
	return &dto.LogSearchResponse{Results: records}, nil
}

func (r *elasticsearchLogRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	before := logquery.FormatTime(cutoff)
	res, err := r.esTypedClient.DeleteByQuery(r.indexPattern()).
		Request(&deletebyquery.Request{
			Query: &types.Query{
				Range: map[string]types.RangeQuery{
					timeField: types.DateRangeQuery{Lt: &before},
				},
			},
		}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch delete by query failed: %w", err)
	}
	var deleted int64
	if res.Deleted != nil {
		deleted = *res.Deleted
	}
	return deleted, nil
}
