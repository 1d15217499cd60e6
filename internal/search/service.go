package search

import (
	"context"

	"audit-log-search/internal/dto"
)

// Service answers one page of an audit log search. Implementations are
// called at most once per page request and must not retry on their own.
type Service interface {
	Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error)

func (f ServiceFunc) Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	return f(ctx, req)
}

// Notifier receives fetch failures.
type Notifier interface {
	NotifyError(err error)
}

type NotifierFunc func(err error)

func (f NotifierFunc) NotifyError(err error) {
	f(err)
}

// Presenter is handed a fresh View after every state transition. Calls are
// serialised and views arrive in Version order; a view overtaken by a newer
// one is skipped. Present must not call the Controller's mutating methods.
//
// The presenter only renders. User actions flow the other way, through the
// Controller: ToggleColumn for a column toggle, ApplySort for a sort change,
// LoadNextPage for "load more", ApplyFilter and ApplyTimeRange for filter
// edits.
type Presenter interface {
	Present(view View)
}

type PresenterFunc func(view View)

func (f PresenterFunc) Present(view View) {
	f(view)
}
