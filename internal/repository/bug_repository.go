package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emoncse/bugtracker/internal/domain"
)

type bugRepository struct {
	db *gorm.DB
}

// NewBugRepository creates a GORM-backed bug repository.
func NewBugRepository(db *gorm.DB) BugRepository {
	return &bugRepository{db: db}
}

func (r *bugRepository) Create(ctx context.Context, bug *domain.Bug) error {
	return r.db.WithContext(ctx).Create(domain.BugToModel(bug)).Error
}

func (r *bugRepository) GetByID(ctx context.Context, id string) (*domain.Bug, error) {
	var model domain.BugModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBugNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *bugRepository) Update(ctx context.Context, bug *domain.Bug) error {
	result := r.db.WithContext(ctx).
		Model(&domain.BugModel{}).
		Where("id = ?", bug.ID).
		Updates(map[string]interface{}{
			"title":             bug.Title,
			"description":       bug.Description,
			"status":            string(bug.Status),
			"priority":          string(bug.Priority),
			"assignee_id":       bug.AssigneeID,
			"assignee_username": bug.AssigneeUsername,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBugNotFound
	}
	return nil
}

func (r *bugRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.BugModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBugNotFound
	}
	return nil
}

func (r *bugRepository) List(ctx context.Context, filter domain.BugFilter) ([]*domain.Bug, error) {
	query := r.db.WithContext(ctx).Model(&domain.BugModel{})
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != "" {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.CreatorID != "" {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}

	var models []domain.BugModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	bugs := make([]*domain.Bug, 0, len(models))
	for i := range models {
		bugs = append(bugs, models[i].ToDomain())
	}
	return bugs, nil
}

func (r *bugRepository) ExistsAssigned(ctx context.Context, projectID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.BugModel{}).
		Where("project_id = ? AND assignee_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *bugRepository) ExistsCreated(ctx context.Context, projectID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.BugModel{}).
		Where("project_id = ? AND creator_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *bugRepository) CountByProject(ctx context.Context, projectID string) (int64, int64, error) {
	var total, open int64
	err := r.db.WithContext(ctx).Model(&domain.BugModel{}).
		Where("project_id = ?", projectID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&domain.BugModel{}).
		Where("project_id = ? AND status = ?", projectID, string(domain.BugStatusOpen)).
		Count(&open).Error
	if err != nil {
		return 0, 0, err
	}
	return total, open, nil
}
