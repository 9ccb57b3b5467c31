package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emoncse/bugtracker/internal/domain"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a GORM-backed activity repository.
// Records are append-only; there is no update or delete path.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(domain.ActivityToModel(activity)).Error
}

func (r *activityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	query := r.db.WithContext(ctx).Model(&domain.ActivityModel{})
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	var models []domain.ActivityModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	activities := make([]*domain.Activity, 0, len(models))
	for i := range models {
		activities = append(activities, models[i].ToDomain())
	}
	return activities, nil
}
