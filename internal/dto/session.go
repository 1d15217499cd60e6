package dto

import "audit-log-search/internal/model"

type SessionRequest struct {
	Filter    SearchFilter `json:"filter"`
	TimeRange TimeRange    `json:"time_range"`
	Sort      *SortSpec    `json:"sort,omitempty"`
}

type SortRequest struct {
	Direction SortDirection `json:"direction" binding:"required"`
}

// SessionView is the presenter payload of a console session.
type SessionView struct {
	ID             string              `json:"id"`
	Records        []model.AuditRecord `json:"records"`
	IsLoading      bool                `json:"is_loading"`
	VisibleColumns []string            `json:"visible_columns"`
	Sort           SortSpec            `json:"sort"`
	Cursor         int                 `json:"cursor"`
	Filter         SearchFilter        `json:"filter"`
	TimeRange      TimeRange           `json:"time_range"`
	LastError      string              `json:"last_error,omitempty"`
}

type PageResponse struct {
	Outcome string      `json:"outcome"`
	Page    int         `json:"page"`
	Count   int         `json:"count"`
	Error   string      `json:"error,omitempty"`
	View    SessionView `json:"view"`
}
