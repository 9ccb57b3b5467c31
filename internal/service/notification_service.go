package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/kafka"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/pkg/log"
)

type notificationService struct {
	activities  repository.ActivityRepository
	broadcaster Broadcaster
	exporter    kafka.ActivityProducer
	logger      zerolog.Logger
}

// NewNotificationService creates the event fan-out service. The exporter
// may be nil when streaming export is disabled.
func NewNotificationService(activities repository.ActivityRepository, broadcaster Broadcaster, exporter kafka.ActivityProducer) Notifier {
	return &notificationService{
		activities:  activities,
		broadcaster: broadcaster,
		exporter:    exporter,
		logger:      log.L().With().Str("component", "notifier").Logger(),
	}
}

func (s *notificationService) ProjectCreated(ctx context.Context, project *domain.Project, actor domain.Actor) *domain.Activity {
	return s.notify(ctx, domain.EventProjectCreated,
		fmt.Sprintf("%s created project %q", actor.Username, project.Name),
		project.ID, "", actor,
		map[string]interface{}{
			"project_id":   project.ID,
			"project_name": project.Name,
			"owner":        project.OwnerUsername,
		})
}

func (s *notificationService) ProjectUpdated(ctx context.Context, project *domain.Project, actor domain.Actor) *domain.Activity {
	return s.notify(ctx, domain.EventProjectUpdated,
		fmt.Sprintf("%s updated project %q", actor.Username, project.Name),
		project.ID, "", actor,
		map[string]interface{}{
			"project_id":   project.ID,
			"project_name": project.Name,
		})
}

func (s *notificationService) BugCreated(ctx context.Context, bug *domain.Bug, actor domain.Actor) *domain.Activity {
	return s.notify(ctx, domain.EventBugCreated,
		fmt.Sprintf("%s reported bug %q", actor.Username, bug.Title),
		bug.ProjectID, bug.ID, actor,
		map[string]interface{}{
			"bug_id":    bug.ID,
			"bug_title": bug.Title,
			"priority":  string(bug.Priority),
			"assignee":  bug.AssigneeUsername,
		})
}

func (s *notificationService) BugUpdated(ctx context.Context, bug *domain.Bug, actor domain.Actor) *domain.Activity {
	return s.notify(ctx, domain.EventBugUpdated,
		fmt.Sprintf("%s updated bug %q", actor.Username, bug.Title),
		bug.ProjectID, bug.ID, actor,
		map[string]interface{}{
			"bug_id":    bug.ID,
			"bug_title": bug.Title,
			"status":    string(bug.Status),
			"priority":  string(bug.Priority),
			"assignee":  bug.AssigneeUsername,
		})
}

func (s *notificationService) BugStatusChanged(ctx context.Context, bug *domain.Bug, oldStatus domain.BugStatus, actor domain.Actor) *domain.Activity {
	return s.notify(ctx, domain.EventBugStatusChanged,
		fmt.Sprintf("%s moved bug %q from %s to %s", actor.Username, bug.Title, oldStatus, bug.Status),
		bug.ProjectID, bug.ID, actor,
		map[string]interface{}{
			"bug_id":     bug.ID,
			"bug_title":  bug.Title,
			"old_status": string(oldStatus),
			"new_status": string(bug.Status),
		})
}

func (s *notificationService) CommentAdded(ctx context.Context, comment *domain.Comment, bug *domain.Bug, projectOwnerID string, actor domain.Actor) *domain.Activity {
	return s.notify(ctx, domain.EventCommentAdded,
		fmt.Sprintf("%s commented on bug %q", actor.Username, bug.Title),
		bug.ProjectID, bug.ID, actor,
		map[string]interface{}{
			"bug_id":     bug.ID,
			"bug_title":  bug.Title,
			"comment_id": comment.ID,
			"message":    comment.Message,
			"recipients": bug.NotificationRecipients(projectOwnerID),
		})
}

// notify persists the activity record, exports it, then broadcasts a
// notification frame to the project room. Persistence and broadcast are
// independent best-effort steps: a failed write is logged and the
// broadcast still goes out, but the activity_update frame is only sent
// for a record that actually landed.
func (s *notificationService) notify(ctx context.Context, kind domain.EventKind, description, projectID, bugID string, actor domain.Actor, data map[string]interface{}) *domain.Activity {
	activity := &domain.Activity{
		ID:          uuid.New().String(),
		Kind:        kind,
		Description: description,
		ProjectID:   projectID,
		UserID:      actor.ID,
		Username:    actor.Username,
		BugID:       bugID,
		CreatedAt:   time.Now(),
	}

	persisted := true
	if err := s.activities.Create(ctx, activity); err != nil {
		persisted = false
		s.logger.Error().
			Err(err).
			Str(log.FieldProjectID, projectID).
			Str("kind", string(kind)).
			Msg("activity write failed")
	}

	if persisted && s.exporter != nil {
		if err := s.exporter.Produce(activity); err != nil {
			s.logger.Warn().Err(err).Msg("activity export failed")
		}
	}

	roomKey := domain.RoomKey(projectID)
	notification := &domain.NotificationMessage{
		Type:             domain.MsgTypeNotification,
		NotificationType: kind,
		Data:             data,
	}
	if err := s.broadcaster.Broadcast(roomKey, notification, ""); err != nil {
		s.logger.Error().
			Err(err).
			Str(log.FieldRoomKey, roomKey).
			Msg("notification broadcast failed")
	}

	if persisted {
		update := &domain.ActivityUpdateMessage{
			Type:         domain.MsgTypeActivityUpdate,
			ActivityData: activity,
		}
		if err := s.broadcaster.Broadcast(roomKey, update, ""); err != nil {
			s.logger.Error().
				Err(err).
				Str(log.FieldRoomKey, roomKey).
				Msg("activity broadcast failed")
		}
	}

	if !persisted {
		return nil
	}
	return activity
}
