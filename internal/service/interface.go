package service

import (
	"context"
	"errors"

	"github.com/emoncse/bugtracker/internal/domain"
)

var (
	ErrForbidden         = errors.New("access denied")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrInvalidStatus     = errors.New("invalid bug status")
	ErrInvalidPriority   = errors.New("invalid bug priority")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Broadcaster fans a frame out to every live member of a room, skipping
// connections owned by excludeUserID. The hub satisfies it directly; the
// relay wraps it for cross-instance delivery.
type Broadcaster interface {
	Broadcast(roomKey string, message interface{}, excludeUserID string) error
}

// AccessService decides who may enter a project's realtime room and read
// its data.
type AccessService interface {
	// CanAccessProject grants project owners, bug assignees and bug
	// creators. An unknown project denies rather than errors.
	CanAccessProject(ctx context.Context, projectID, userID string) (bool, error)
}

// Notifier turns committed domain mutations into durable activity
// records and realtime room broadcasts.
type Notifier interface {
	ProjectCreated(ctx context.Context, project *domain.Project, actor domain.Actor) *domain.Activity
	ProjectUpdated(ctx context.Context, project *domain.Project, actor domain.Actor) *domain.Activity
	BugCreated(ctx context.Context, bug *domain.Bug, actor domain.Actor) *domain.Activity
	BugUpdated(ctx context.Context, bug *domain.Bug, actor domain.Actor) *domain.Activity
	BugStatusChanged(ctx context.Context, bug *domain.Bug, oldStatus domain.BugStatus, actor domain.Actor) *domain.Activity
	CommentAdded(ctx context.Context, comment *domain.Comment, bug *domain.Bug, projectOwnerID string, actor domain.Actor) *domain.Activity
}

// TrackerService is the write and read surface for projects, bugs,
// comments and the activity log.
type TrackerService interface {
	CreateProject(ctx context.Context, req domain.CreateProjectRequest, actor domain.Actor) (*domain.Project, error)
	GetProject(ctx context.Context, projectID, userID string) (*domain.ProjectResponse, error)
	UpdateProject(ctx context.Context, projectID string, req domain.UpdateProjectRequest, actor domain.Actor) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
	ListProjects(ctx context.Context, userID string) ([]domain.ProjectResponse, error)

	CreateBug(ctx context.Context, req domain.CreateBugRequest, actor domain.Actor) (*domain.Bug, error)
	GetBug(ctx context.Context, bugID, userID string) (*domain.Bug, error)
	UpdateBug(ctx context.Context, bugID string, req domain.UpdateBugRequest, actor domain.Actor) (*domain.Bug, error)
	DeleteBug(ctx context.Context, bugID, userID string) error
	ListBugs(ctx context.Context, filter domain.BugFilter, userID string) ([]*domain.Bug, error)

	CreateComment(ctx context.Context, req domain.CreateCommentRequest, actor domain.Actor) (*domain.Comment, error)
	ListComments(ctx context.Context, filter domain.CommentFilter, userID string) ([]*domain.Comment, error)

	ListActivities(ctx context.Context, filter domain.ActivityFilter, userID string) ([]*domain.Activity, error)
}

// AuthService manages accounts and token issuance.
type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}
