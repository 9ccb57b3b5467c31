package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/pkg/jwt"
	"github.com/emoncse/bugtracker/pkg/log"
)

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
	logger zerolog.Logger
}

// NewAuthService creates the account and token service.
func NewAuthService(users repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: log.L().With().Str("component", "auth").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str(log.FieldUserID, user.ID).
		Str(log.FieldUsername, user.Username).
		Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, string, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredential
		}
		return nil, "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", "", ErrInvalidCredential
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, "", "", err
	}

	s.logger.Info().
		Str(log.FieldUserID, user.ID).
		Str(log.FieldUsername, user.Username).
		Msg("user logged in")
	return user, pair.AccessToken, pair.RefreshToken, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	pair, err := s.tokens.RefreshTokens(refreshToken)
	if err != nil {
		return "", "", err
	}
	return pair.AccessToken, pair.RefreshToken, nil
}
