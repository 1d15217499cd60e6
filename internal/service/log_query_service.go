package service

import (
	"context"
	"errors"
	"fmt"

	"audit-log-search/config"
	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"

	"github.com/rs/zerolog/log"
)

var ErrSearchDisabled = errors.New("log search is not enabled")

type LogQueryService interface {
	Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error)
	Enabled() bool
	Features() []string
}

type logQueryService struct {
	logRepo repository.LogRepository
	cfg     *config.Config
}

func NewLogQueryService(logRepo repository.LogRepository, cfg *config.Config) LogQueryService {
	return &logQueryService{
		logRepo: logRepo,
		cfg:     cfg,
	}
}

func (s *logQueryService) Enabled() bool {
	return s.cfg.Search.Enabled
}

func (s *logQueryService) Features() []string {
	return s.cfg.Features()
}

// Search validates and normalises one page request before handing it to
// the backend. Results are never nil.
func (s *logQueryService) Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	if !s.Enabled() {
		return nil, ErrSearchDisabled
	}
	for field := range req.Filter {
		if !dto.IsFilterField(field) {
			return nil, fmt.Errorf("%w: unknown field %q", logquery.ErrInvalidFilter, field)
		}
	}
	req.Filter = req.Filter.Clone()

	if req.PageNo < 0 {
		return nil, fmt.Errorf("%w: pageNo must not be negative", logquery.ErrInvalidPaging)
	}
	if req.PageSize <= 0 {
		req.PageSize = logquery.DefaultPageSize
	}
	if req.PageSize > logquery.MaxPageSize {
		return nil, fmt.Errorf("%w: pageSize exceeds %d", logquery.ErrInvalidPaging, logquery.MaxPageSize)
	}
	if err := logquery.CheckWindow(req.PageNo, req.PageSize); err != nil {
		return nil, err
	}
	switch req.Order {
	case "":
		req.Order = dto.OrderTimeDesc
	case dto.OrderTimeAsc, dto.OrderTimeDesc:
	default:
		return nil, fmt.Errorf("%w: %q", logquery.ErrInvalidOrder, req.Order)
	}
	tr := req.TimeRange
	if !tr.Start.IsZero() && !tr.End.IsZero() && tr.End.Before(tr.Start) {
		return nil, fmt.Errorf("%w: end before start", logquery.ErrInvalidTimeRange)
	}

	log.Info().
		Interface("filter", req.Filter).
		Time("start_time", tr.Start).
		Time("end_time", tr.End).
		Str("order", req.Order).
		Int("page", req.PageNo).
		Int("size", req.PageSize).
		Msg("Searching audit logs")

	res, err := s.logRepo.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &dto.LogSearchResponse{}
	}
	if res.Results == nil {
		res.Results = []model.AuditRecord{}
	}
	return res, nil
}
