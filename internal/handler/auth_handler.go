package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/internal/service"
	"github.com/emoncse/bugtracker/pkg/log"
	"github.com/emoncse/bugtracker/pkg/response"
)

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	auth   service.AuthService
	logger zerolog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: log.L().With().Str("component", "auth_http").Logger(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			response.Conflict(c, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("register failed")
		response.InternalError(c, "internal error")
		return
	}
	response.Created(c, user.ToResponse())
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, access, refresh, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			response.Unauthorized(c, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		response.InternalError(c, "internal error")
		return
	}
	response.Success(c, gin.H{
		"user":          user.ToResponse(),
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	access, refresh, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "invalid refresh token")
		return
	}
	response.Success(c, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}
