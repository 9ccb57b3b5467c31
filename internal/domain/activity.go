package domain

import (
	"fmt"
	"time"
)

// EventKind enumerates the domain events that produce notifications and
// activity records.
type EventKind string

const (
	EventBugCreated       EventKind = "bug_created"
	EventBugUpdated       EventKind = "bug_updated"
	EventBugStatusChanged EventKind = "bug_status_changed"
	EventCommentAdded     EventKind = "comment_added"
	EventProjectCreated   EventKind = "project_created"
	EventProjectUpdated   EventKind = "project_updated"
)

// RoomKey returns the broadcast room key for a project. Every realtime
// event for a project fans out to this room.
func RoomKey(projectID string) string {
	return fmt.Sprintf("project_%s", projectID)
}

// Activity is the durable record of a domain event. Written exactly once
// per event, after the underlying entity change has committed; never
// mutated afterwards.
type Activity struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	Description string    `json:"description"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	BugID       string    `json:"bug_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	ProjectID string `form:"project"`
	Kind      string `form:"kind"`
}
