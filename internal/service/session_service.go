package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/notify"
	"audit-log-search/internal/search"
	"audit-log-search/internal/store"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidSort   = errors.New("invalid sort direction")
	ErrInvalidPreset = errors.New("invalid saved search")
)

// SessionService drives server-held search controllers for the console.
// Every fetching call waits for the page result before returning.
type SessionService interface {
	Create(ctx context.Context, req dto.SessionRequest) (dto.SessionView, error)
	View(ctx context.Context, id string) (dto.SessionView, error)
	ApplyFilter(ctx context.Context, id string, req dto.SessionRequest) (dto.SessionView, error)
	ApplySort(ctx context.Context, id string, direction dto.SortDirection) (dto.PageResponse, error)
	Load(ctx context.Context, id string) (dto.PageResponse, error)
	Next(ctx context.Context, id string) (dto.PageResponse, error)
	ToggleColumn(ctx context.Context, id string, column string) (dto.SessionView, error)
	Delete(ctx context.Context, id string) error
	EvictIdle(now time.Time) int
}

type sessionService struct {
	sessions store.SessionStore
	query    LogQueryService
}

func NewSessionService(sessions store.SessionStore, query LogQueryService) SessionService {
	return &sessionService{
		sessions: sessions,
		query:    query,
	}
}

func (s *sessionService) Create(ctx context.Context, req dto.SessionRequest) (dto.SessionView, error) {
	if err := validateFilter(req.Filter); err != nil {
		return dto.SessionView{}, err
	}
	sort := dto.DefaultSort()
	if req.Sort != nil {
		dir, err := parseDirection(req.Sort.Direction)
		if err != nil {
			return dto.SessionView{}, err
		}
		sort.Direction = dir
	}

	session, err := s.sessions.CreateSession(ctx, func(n search.Notifier) *search.Controller {
		return search.NewController(s.query,
			search.WithNotifier(n),
			search.WithFeatureGate(s.query.Enabled),
			search.WithSort(sort),
		)
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	session.Controller.ApplyFilter(req.Filter)
	session.Controller.ApplyTimeRange(req.TimeRange)
	log.Info().Str("session", session.ID).Msg("Console search session opened")
	return toSessionView(session), nil
}

func (s *sessionService) View(ctx context.Context, id string) (dto.SessionView, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	return toSessionView(session), nil
}

// ApplyFilter replaces both filter and time range; neither fetches.
func (s *sessionService) ApplyFilter(ctx context.Context, id string, req dto.SessionRequest) (dto.SessionView, error) {
	if err := validateFilter(req.Filter); err != nil {
		return dto.SessionView{}, err
	}
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	session.Controller.ApplyFilter(req.Filter)
	session.Controller.ApplyTimeRange(req.TimeRange)
	return toSessionView(session), nil
}

func (s *sessionService) ApplySort(ctx context.Context, id string, direction dto.SortDirection) (dto.PageResponse, error) {
	dir, err := parseDirection(direction)
	if err != nil {
		return dto.PageResponse{}, err
	}
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return dto.PageResponse{}, err
	}
	session.Errors.Clear()
	sort := dto.SortSpec{Field: "time", Direction: dir}
	return awaitPage(ctx, session, session.Controller.ApplySort(ctx, sort))
}

func (s *sessionService) Load(ctx context.Context, id string) (dto.PageResponse, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return dto.PageResponse{}, err
	}
	session.Errors.Clear()
	return awaitPage(ctx, session, session.Controller.TriggerInitialLoad(ctx))
}

func (s *sessionService) Next(ctx context.Context, id string) (dto.PageResponse, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return dto.PageResponse{}, err
	}
	return awaitPage(ctx, session, session.Controller.LoadNextPage(ctx))
}

func (s *sessionService) ToggleColumn(ctx context.Context, id string, column string) (dto.SessionView, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	if _, err := session.Controller.ToggleColumn(column); err != nil {
		return dto.SessionView{}, err
	}
	return toSessionView(session), nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	return s.sessions.DeleteSession(ctx, id)
}

func (s *sessionService) EvictIdle(now time.Time) int {
	return s.sessions.EvictIdle(now)
}

func awaitPage(ctx context.Context, session *store.Session, future <-chan search.PageResult) (dto.PageResponse, error) {
	select {
	case <-ctx.Done():
		return dto.PageResponse{}, ctx.Err()
	case res := <-future:
		resp := dto.PageResponse{
			Outcome: res.Outcome.String(),
			Page:    res.Page,
			Count:   len(res.Records),
			View:    toSessionView(session),
		}
		if res.Err != nil {
			resp.Error = notify.Message(res.Err)
		}
		return resp, nil
	}
}

func toSessionView(session *store.Session) dto.SessionView {
	v := session.Controller.View()
	return dto.SessionView{
		ID:             session.ID,
		Records:        v.Records,
		IsLoading:      v.IsLoading,
		VisibleColumns: v.VisibleColumns,
		Sort:           v.Sort,
		Cursor:         v.Cursor,
		Filter:         v.Filter,
		TimeRange:      v.TimeRange,
		LastError:      notify.Message(session.Errors.Last()),
	}
}

func validateFilter(f dto.SearchFilter) error {
	for field := range f {
		if !dto.IsFilterField(field) {
			return fmt.Errorf("%w: unknown field %q", logquery.ErrInvalidFilter, field)
		}
	}
	return nil
}

func parseDirection(d dto.SortDirection) (dto.SortDirection, error) {
	switch dto.SortDirection(strings.ToUpper(string(d))) {
	case dto.SortAsc:
		return dto.SortAsc, nil
	case dto.SortDesc, "":
		return dto.SortDesc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSort, d)
}
