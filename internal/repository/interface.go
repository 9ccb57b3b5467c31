package repository

import (
	"context"
	"errors"

	"github.com/emoncse/bugtracker/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateUser   = errors.New("username or email already taken")
	ErrProjectNotFound = errors.New("project not found")
	ErrBugNotFound     = errors.New("bug not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error

	// ListAccessible returns projects the user owns plus projects
	// holding a bug the user created or is assigned to.
	ListAccessible(ctx context.Context, userID string) ([]*domain.Project, error)
}

// BugRepository persists bugs.
type BugRepository interface {
	Create(ctx context.Context, bug *domain.Bug) error
	GetByID(ctx context.Context, id string) (*domain.Bug, error)
	Update(ctx context.Context, bug *domain.Bug) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.BugFilter) ([]*domain.Bug, error)

	// ExistsAssigned reports whether the user is assigned to any bug in
	// the project. ExistsCreated does the same for authorship.
	ExistsAssigned(ctx context.Context, projectID, userID string) (bool, error)
	ExistsCreated(ctx context.Context, projectID, userID string) (bool, error)

	CountByProject(ctx context.Context, projectID string) (total int64, open int64, err error)
}

// CommentRepository persists bug comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	List(ctx context.Context, filter domain.CommentFilter) ([]*domain.Comment, error)
}

// ActivityRepository is the append-only activity log.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, error)
}
