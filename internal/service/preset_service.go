package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"

	"github.com/rs/zerolog/log"
)

// PresetService manages saved searches: named filter, time range and sort
// combinations.
type PresetService interface {
	Create(ctx context.Context, req dto.PresetRequest) (*dto.PresetResponse, error)
	List(ctx context.Context) ([]dto.PresetResponse, error)
	Get(ctx context.Context, id uint) (*dto.PresetResponse, error)
	Delete(ctx context.Context, id uint) error
}

type presetService struct {
	repo repository.PresetRepository
}

func NewPresetService(repo repository.PresetRepository) PresetService {
	return &presetService{repo: repo}
}

func (s *presetService) Create(ctx context.Context, req dto.PresetRequest) (*dto.PresetResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	filter := dto.SearchFilter(req.Filter)
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	dir, err := parseDirection(req.Sort.Direction)
	if err != nil {
		return nil, err
	}
	tr := req.TimeRange
	if !tr.Start.IsZero() && !tr.End.IsZero() && tr.End.Before(tr.Start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidPreset)
	}

	filterJSON, err := json.Marshal(filter.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode preset filter: %w", err)
	}
	preset := &model.SavedSearch{
		Name:          name,
		FilterJSON:    string(filterJSON),
		SortDirection: string(dir),
	}
	if !tr.Start.IsZero() {
		start := tr.Start.UTC()
		preset.TimeStart = &start
	}
	if !tr.End.IsZero() {
		end := tr.End.UTC()
		preset.TimeEnd = &end
	}

	if err := s.repo.Create(ctx, preset); err != nil {
		return nil, err
	}
	log.Info().Uint("id", preset.ID).Str("name", preset.Name).Msg("Saved search created")
	return toPresetResponse(*preset), nil
}

func (s *presetService) List(ctx context.Context) ([]dto.PresetResponse, error) {
	presets, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PresetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, *toPresetResponse(p))
	}
	return out, nil
}

func (s *presetService) Get(ctx context.Context, id uint) (*dto.PresetResponse, error) {
	preset, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPresetResponse(*preset), nil
}

func (s *presetService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func toPresetResponse(p model.SavedSearch) *dto.PresetResponse {
	filter := map[string]string{}
	if p.FilterJSON != "" {
		if err := json.Unmarshal([]byte(p.FilterJSON), &filter); err != nil {
			log.Warn().Err(err).Uint("id", p.ID).Msg("Saved search has an unreadable filter")
		}
	}
	resp := &dto.PresetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Filter:    filter,
		Sort:      dto.SortSpec{Field: "time", Direction: dto.SortDirection(p.SortDirection)},
		CreatedAt: p.CreatedAt,
	}
	if p.TimeStart != nil {
		resp.TimeRange.Start = p.TimeStart.UTC()
	}
	if p.TimeEnd != nil {
		resp.TimeRange.End = p.TimeEnd.UTC()
	}
	return resp
}
