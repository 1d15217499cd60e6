package dto

import "time"

type PresetRequest struct {
	Name      string            `json:"name" binding:"required"`
	Filter    map[string]string `json:"filter"`
	TimeRange TimeRange         `json:"time_range"`
	Sort      SortSpec          `json:"sort"`
}

type PresetResponse struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	Filter    map[string]string `json:"filter"`
	TimeRange TimeRange         `json:"time_range"`
	Sort      SortSpec          `json:"sort"`
	CreatedAt time.Time         `json:"created_at"`
}
