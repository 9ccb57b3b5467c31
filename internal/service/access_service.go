package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/pkg/log"
)

type accessService struct {
	projects repository.ProjectRepository
	bugs     repository.BugRepository
	logger   zerolog.Logger
}

// NewAccessService creates the project access checker.
func NewAccessService(projects repository.ProjectRepository, bugs repository.BugRepository) AccessService {
	return &accessService{
		projects: projects,
		bugs:     bugs,
		logger:   log.L().With().Str("component", "access").Logger(),
	}
}

// CanAccessProject grants when the user owns the project, is assigned to
// one of its bugs, or created one of its bugs. A project that does not
// exist denies instead of erroring so callers treat probes for unknown
// IDs the same as insufficient rights.
func (s *accessService) CanAccessProject(ctx context.Context, projectID, userID string) (bool, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return false, nil
		}
		return false, err
	}

	if project.OwnerID == userID {
		return true, nil
	}

	assigned, err := s.bugs.ExistsAssigned(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if assigned {
		return true, nil
	}

	created, err := s.bugs.ExistsCreated(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	s.logger.Debug().
		Str(log.FieldProjectID, projectID).
		Str(log.FieldUserID, userID).
		Msg("access denied")
	return false, nil
}
