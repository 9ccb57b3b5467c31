package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/internal/service"
	"github.com/emoncse/bugtracker/pkg/log"
	"github.com/emoncse/bugtracker/pkg/middleware"
	"github.com/emoncse/bugtracker/pkg/response"
)

// HTTPHandler serves the REST surface for projects, bugs, comments and
// the activity log.
type HTTPHandler struct {
	tracker service.TrackerService
	logger  zerolog.Logger
}

// NewHTTPHandler creates the REST handler.
func NewHTTPHandler(tracker service.TrackerService) *HTTPHandler {
	return &HTTPHandler{
		tracker: tracker,
		logger:  log.L().With().Str("component", "http").Logger(),
	}
}

func actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:       middleware.GetUserID(c),
		Username: middleware.GetUsername(c),
	}
}

// writeServiceError maps service and repository errors onto the API
// envelope.
func (h *HTTPHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrBugNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrInvalidTransition):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error().Err(err).Str(log.FieldPath, c.FullPath()).Msg("request failed")
		response.InternalError(c, "internal error")
	}
}

// Projects

func (h *HTTPHandler) CreateProject(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.tracker.CreateProject(c.Request.Context(), req, actor(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Created(c, project)
}

func (h *HTTPHandler) GetProject(c *gin.Context) {
	resp, err := h.tracker.GetProject(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *HTTPHandler) UpdateProject(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.tracker.UpdateProject(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, project)
}

func (h *HTTPHandler) DeleteProject(c *gin.Context) {
	if err := h.tracker.DeleteProject(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *HTTPHandler) ListProjects(c *gin.Context) {
	projects, err := h.tracker.ListProjects(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, projects)
}

// Bugs

func (h *HTTPHandler) CreateBug(c *gin.Context) {
	var req domain.CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bug, err := h.tracker.CreateBug(c.Request.Context(), req, actor(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Created(c, bug)
}

func (h *HTTPHandler) GetBug(c *gin.Context) {
	bug, err := h.tracker.GetBug(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, bug)
}

func (h *HTTPHandler) UpdateBug(c *gin.Context) {
	var req domain.UpdateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bug, err := h.tracker.UpdateBug(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, bug)
}

func (h *HTTPHandler) DeleteBug(c *gin.Context) {
	if err := h.tracker.DeleteBug(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *HTTPHandler) ListBugs(c *gin.Context) {
	var filter domain.BugFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bugs, err := h.tracker.ListBugs(c.Request.Context(), filter, middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, bugs)
}

// ListProjectBugs lists the bugs of one project.
func (h *HTTPHandler) ListProjectBugs(c *gin.Context) {
	var filter domain.BugFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	filter.ProjectID = c.Param("id")

	bugs, err := h.tracker.ListBugs(c.Request.Context(), filter, middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, bugs)
}

// ListAssignedBugs lists bugs assigned to the caller.
func (h *HTTPHandler) ListAssignedBugs(c *gin.Context) {
	userID := middleware.GetUserID(c)
	bugs, err := h.tracker.ListBugs(c.Request.Context(), domain.BugFilter{AssigneeID: userID}, userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, bugs)
}

// ListCreatedBugs lists bugs reported by the caller.
func (h *HTTPHandler) ListCreatedBugs(c *gin.Context) {
	userID := middleware.GetUserID(c)
	bugs, err := h.tracker.ListBugs(c.Request.Context(), domain.BugFilter{CreatorID: userID}, userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, bugs)
}

// Comments

func (h *HTTPHandler) CreateComment(c *gin.Context) {
	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.tracker.CreateComment(c.Request.Context(), req, actor(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Created(c, comment)
}

func (h *HTTPHandler) ListComments(c *gin.Context) {
	var filter domain.CommentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comments, err := h.tracker.ListComments(c.Request.Context(), filter, middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, comments)
}

// Activities

func (h *HTTPHandler) ListActivities(c *gin.Context) {
	var filter domain.ActivityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	activities, err := h.tracker.ListActivities(c.Request.Context(), filter, middleware.GetUserID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, activities)
}
