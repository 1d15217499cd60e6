package mysql

import (
	"context"
	"errors"
	"fmt"

	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"

	"gorm.io/gorm"
)

type presetRepository struct {
	db *gorm.DB
}

func NewPresetRepository(db *gorm.DB) repository.PresetRepository {
	return &presetRepository{db: db}
}

func (r *presetRepository) Create(ctx context.Context, preset *model.SavedSearch) error {
	err := r.db.WithContext(ctx).Create(preset).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrPresetExists
	}
	if err != nil {
		return fmt.Errorf("create preset: %w", err)
	}
	return nil
}

func (r *presetRepository) List(ctx context.Context) ([]model.SavedSearch, error) {
	var presets []model.SavedSearch
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&presets).Error; err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

func (r *presetRepository) Get(ctx context.Context, id uint) (*model.SavedSearch, error) {
	var preset model.SavedSearch
	err := r.db.WithContext(ctx).First(&preset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrPresetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	return &preset, nil
}

func (r *presetRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.SavedSearch{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete preset: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrPresetNotFound
	}
	return nil
}
