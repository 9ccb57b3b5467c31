package domain

import "time"

// BugStatus represents the lifecycle state of a bug.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in_progress"
	BugStatusResolved   BugStatus = "resolved"
)

// BugPriority represents bug priority.
type BugPriority string

const (
	BugPriorityLow      BugPriority = "low"
	BugPriorityMedium   BugPriority = "medium"
	BugPriorityHigh     BugPriority = "high"
	BugPriorityCritical BugPriority = "critical"
)

// ValidStatus reports whether s is a known bug status.
func ValidStatus(s BugStatus) bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known bug priority.
func ValidPriority(p BugPriority) bool {
	switch p {
	case BugPriorityLow, BugPriorityMedium, BugPriorityHigh, BugPriorityCritical:
		return true
	}
	return false
}

// ValidStatusTransition reports whether a bug may move between two states.
// Each state may move to either of the other two; staying put is handled
// by the caller (no transition at all).
func ValidStatusTransition(from, to BugStatus) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	return from != to
}

// Bug is a tracked defect inside a project. AssigneeID is empty while the
// bug is unassigned.
type Bug struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Status           BugStatus   `json:"status"`
	Priority         BugPriority `json:"priority"`
	ProjectID        string      `json:"project_id"`
	AssigneeID       string      `json:"assignee_id,omitempty"`
	AssigneeUsername string      `json:"assignee_username,omitempty"`
	CreatorID        string      `json:"creator_id"`
	CreatorUsername  string      `json:"creator_username"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CreateBugRequest represents a create bug request.
type CreateBugRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	ProjectID   string `json:"project_id" binding:"required"`
	AssigneeID  string `json:"assignee_id"`
}

// UpdateBugRequest represents an update bug request.
type UpdateBugRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *string `json:"assignee_id"`
}

// BugFilter narrows bug listings.
type BugFilter struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	ProjectID  string `form:"project"`
	AssigneeID string `form:"assigned_to"`
	CreatorID  string `form:"created_by"`
}

// NotificationRecipients returns the user IDs that care about changes to
// this bug: creator, assignee, project owner. Duplicates are removed with
// order preserved.
func (b *Bug) NotificationRecipients(projectOwnerID string) []string {
	candidates := []string{b.CreatorID, b.AssigneeID, projectOwnerID}

	seen := make(map[string]struct{}, len(candidates))
	recipients := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients
}
