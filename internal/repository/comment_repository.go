package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emoncse/bugtracker/internal/domain"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a GORM-backed comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(domain.CommentToModel(comment)).Error
}

func (r *commentRepository) List(ctx context.Context, filter domain.CommentFilter) ([]*domain.Comment, error) {
	query := r.db.WithContext(ctx).Model(&domain.CommentModel{})
	if filter.BugID != "" {
		query = query.Where("bug_id = ?", filter.BugID)
	}

	var models []domain.CommentModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, models[i].ToDomain())
	}
	return comments, nil
}
