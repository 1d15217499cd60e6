package model

import "time"

// SavedSearch is a named filter/sort preset.
type SavedSearch struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:128;not null;uniqueIndex"`
	FilterJSON    string `gorm:"type:text"`
	TimeStart     *time.Time
	TimeEnd       *time.Time
	SortDirection string `gorm:"size:4;not null;default:DESC"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SavedSearch) TableName() string {
	return "saved_searches"
}
