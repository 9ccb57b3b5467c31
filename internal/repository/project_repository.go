package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emoncse/bugtracker/internal/domain"
)

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a GORM-backed project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(domain.ProjectToModel(project)).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var model domain.ProjectModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ProjectModel{}).
		Where("id = ?", project.ID).
		Updates(map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ProjectModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) ListAccessible(ctx context.Context, userID string) ([]*domain.Project, error) {
	involved := r.db.Model(&domain.BugModel{}).
		Select("project_id").
		Where("assignee_id = ? OR creator_id = ?", userID, userID)

	var models []domain.ProjectModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)", userID, involved).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	projects := make([]*domain.Project, 0, len(models))
	for i := range models {
		projects = append(projects, models[i].ToDomain())
	}
	return projects, nil
}
