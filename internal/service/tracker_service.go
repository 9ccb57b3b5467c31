package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/pkg/log"
)

type trackerService struct {
	projects repository.ProjectRepository
	bugs     repository.BugRepository
	comments repository.CommentRepository
	activity repository.ActivityRepository
	users    repository.UserRepository
	access   AccessService
	notifier Notifier
	logger   zerolog.Logger
}

// NewTrackerService wires the tracker write/read surface. Every mutation
// commits first, then hands the result to the notifier.
func NewTrackerService(
	projects repository.ProjectRepository,
	bugs repository.BugRepository,
	comments repository.CommentRepository,
	activity repository.ActivityRepository,
	users repository.UserRepository,
	access AccessService,
	notifier Notifier,
) TrackerService {
	return &trackerService{
		projects: projects,
		bugs:     bugs,
		comments: comments,
		activity: activity,
		users:    users,
		access:   access,
		notifier: notifier,
		logger:   log.L().With().Str("component", "tracker").Logger(),
	}
}

func (s *trackerService) CreateProject(ctx context.Context, req domain.CreateProjectRequest, actor domain.Actor) (*domain.Project, error) {
	now := time.Now()
	project := &domain.Project{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		OwnerID:       actor.ID,
		OwnerUsername: actor.Username,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.notifier.ProjectCreated(ctx, project, actor)
	return project, nil
}

func (s *trackerService) GetProject(ctx context.Context, projectID, userID string) (*domain.ProjectResponse, error) {
	if err := s.requireAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	total, open, err := s.bugs.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := project.ToResponse(int(total), int(open))
	return &resp, nil
}

func (s *trackerService) UpdateProject(ctx context.Context, projectID string, req domain.UpdateProjectRequest, actor domain.Actor) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor.ID {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.notifier.ProjectUpdated(ctx, project, actor)
	return project, nil
}

func (s *trackerService) DeleteProject(ctx context.Context, projectID, userID string) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return ErrForbidden
	}
	return s.projects.Delete(ctx, projectID)
}

func (s *trackerService) ListProjects(ctx context.Context, userID string) ([]domain.ProjectResponse, error) {
	projects, err := s.projects.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		total, open, err := s.bugs.CountByProject(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, project.ToResponse(int(total), int(open)))
	}
	return responses, nil
}

func (s *trackerService) CreateBug(ctx context.Context, req domain.CreateBugRequest, actor domain.Actor) (*domain.Bug, error) {
	if err := s.requireAccess(ctx, req.ProjectID, actor.ID); err != nil {
		return nil, err
	}

	priority := domain.BugPriorityMedium
	if req.Priority != "" {
		priority = domain.BugPriority(req.Priority)
		if !domain.ValidPriority(priority) {
			return nil, ErrInvalidPriority
		}
	}

	var assigneeUsername string
	if req.AssigneeID != "" {
		assignee, err := s.users.GetByID(ctx, req.AssigneeID)
		if err != nil {
			return nil, err
		}
		assigneeUsername = assignee.Username
	}

	now := time.Now()
	bug := &domain.Bug{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Description:      req.Description,
		Status:           domain.BugStatusOpen,
		Priority:         priority,
		ProjectID:        req.ProjectID,
		AssigneeID:       req.AssigneeID,
		AssigneeUsername: assigneeUsername,
		CreatorID:        actor.ID,
		CreatorUsername:  actor.Username,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.bugs.Create(ctx, bug); err != nil {
		return nil, err
	}

	s.notifier.BugCreated(ctx, bug, actor)
	return bug, nil
}

func (s *trackerService) GetBug(ctx context.Context, bugID, userID string) (*domain.Bug, error) {
	bug, err := s.bugs.GetByID(ctx, bugID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, bug.ProjectID, userID); err != nil {
		return nil, err
	}
	return bug, nil
}

func (s *trackerService) UpdateBug(ctx context.Context, bugID string, req domain.UpdateBugRequest, actor domain.Actor) (*domain.Bug, error) {
	bug, err := s.bugs.GetByID(ctx, bugID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, bug.ProjectID, actor.ID); err != nil {
		return nil, err
	}

	oldStatus := bug.Status
	statusChanged := false

	if req.Title != nil {
		bug.Title = *req.Title
	}
	if req.Description != nil {
		bug.Description = *req.Description
	}
	if req.Priority != nil {
		priority := domain.BugPriority(*req.Priority)
		if !domain.ValidPriority(priority) {
			return nil, ErrInvalidPriority
		}
		bug.Priority = priority
	}
	if req.Status != nil {
		status := domain.BugStatus(*req.Status)
		if !domain.ValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		if status != oldStatus {
			if !domain.ValidStatusTransition(oldStatus, status) {
				return nil, ErrInvalidTransition
			}
			bug.Status = status
			statusChanged = true
		}
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			bug.AssigneeID = ""
			bug.AssigneeUsername = ""
		} else {
			assignee, err := s.users.GetByID(ctx, *req.AssigneeID)
			if err != nil {
				return nil, err
			}
			bug.AssigneeID = assignee.ID
			bug.AssigneeUsername = assignee.Username
		}
	}

	if err := s.bugs.Update(ctx, bug); err != nil {
		return nil, err
	}

	if statusChanged {
		s.notifier.BugStatusChanged(ctx, bug, oldStatus, actor)
	} else {
		s.notifier.BugUpdated(ctx, bug, actor)
	}
	return bug, nil
}

func (s *trackerService) DeleteBug(ctx context.Context, bugID, userID string) error {
	bug, err := s.bugs.GetByID(ctx, bugID)
	if err != nil {
		return err
	}

	project, err := s.projects.GetByID(ctx, bug.ProjectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID && bug.CreatorID != userID {
		return ErrForbidden
	}
	return s.bugs.Delete(ctx, bugID)
}

func (s *trackerService) ListBugs(ctx context.Context, filter domain.BugFilter, userID string) ([]*domain.Bug, error) {
	if filter.ProjectID != "" {
		if err := s.requireAccess(ctx, filter.ProjectID, userID); err != nil {
			return nil, err
		}
		return s.bugs.List(ctx, filter)
	}

	// Without a project filter, restrict to bugs the user can see
	// through any accessible project.
	projects, err := s.projects.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}

	var bugs []*domain.Bug
	for _, project := range projects {
		scoped := filter
		scoped.ProjectID = project.ID
		got, err := s.bugs.List(ctx, scoped)
		if err != nil {
			return nil, err
		}
		bugs = append(bugs, got...)
	}
	return bugs, nil
}

func (s *trackerService) CreateComment(ctx context.Context, req domain.CreateCommentRequest, actor domain.Actor) (*domain.Comment, error) {
	bug, err := s.bugs.GetByID(ctx, req.BugID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, bug.ProjectID, actor.ID); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, bug.ProjectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:             uuid.New().String(),
		BugID:          bug.ID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Message:        req.Message,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifier.CommentAdded(ctx, comment, bug, project.OwnerID, actor)
	return comment, nil
}

func (s *trackerService) ListComments(ctx context.Context, filter domain.CommentFilter, userID string) ([]*domain.Comment, error) {
	if filter.BugID != "" {
		bug, err := s.bugs.GetByID(ctx, filter.BugID)
		if err != nil {
			return nil, err
		}
		if err := s.requireAccess(ctx, bug.ProjectID, userID); err != nil {
			return nil, err
		}
	}
	return s.comments.List(ctx, filter)
}

func (s *trackerService) ListActivities(ctx context.Context, filter domain.ActivityFilter, userID string) ([]*domain.Activity, error) {
	if filter.ProjectID != "" {
		if err := s.requireAccess(ctx, filter.ProjectID, userID); err != nil {
			return nil, err
		}
		return s.activity.List(ctx, filter)
	}

	// Without a project filter, restrict to records from projects the
	// user can see.
	projects, err := s.projects.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}

	var activities []*domain.Activity
	for _, project := range projects {
		scoped := filter
		scoped.ProjectID = project.ID
		got, err := s.activity.List(ctx, scoped)
		if err != nil {
			return nil, err
		}
		activities = append(activities, got...)
	}
	return activities, nil
}

func (s *trackerService) requireAccess(ctx context.Context, projectID, userID string) error {
	allowed, err := s.access.CanAccessProject(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !allowed {
		// Distinguish a missing project from insufficient rights for
		// HTTP mapping; realtime callers treat both as denial.
		if _, err := s.projects.GetByID(ctx, projectID); errors.Is(err, repository.ErrProjectNotFound) {
			return repository.ErrProjectNotFound
		}
		return ErrForbidden
	}
	return nil
}
