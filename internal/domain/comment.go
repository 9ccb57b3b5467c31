package domain

import "time"

// Comment is a user note attached to a bug.
type Comment struct {
	ID             string    `json:"id"`
	BugID          string    `json:"bug_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateCommentRequest represents a create comment request.
type CreateCommentRequest struct {
	BugID   string `json:"bug_id" binding:"required"`
	Message string `json:"message" binding:"required,min=1"`
}

// CommentFilter narrows comment listings.
type CommentFilter struct {
	BugID string `form:"bug"`
}
