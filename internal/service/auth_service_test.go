package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/pkg/jwt"
)

func newAuthFixture(t *testing.T) (AuthService, *memUsers) {
	t.Helper()
	tokens, err := jwt.NewManager("test-secret", 15*time.Minute, time.Hour, "test")
	require.NoError(t, err)
	users := newMemUsers()
	return NewAuthService(users, tokens), users
}

func TestRegisterAndLogin(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	auth, _ := newAuthFixture(t)

	user, err := auth.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "correct horse",
	})
	r.NoError(err)
	r.NotEmpty(user.ID)
	r.NotEqual("correct horse", user.PasswordHash)

	got, access, refresh, err := auth.Login(ctx, domain.LoginRequest{
		Username: "alice",
		Password: "correct horse",
	})
	r.NoError(err)
	r.Equal(user.ID, got.ID)
	r.NotEmpty(access)
	r.NotEmpty(refresh)

	newAccess, newRefresh, err := auth.Refresh(ctx, refresh)
	r.NoError(err)
	r.NotEmpty(newAccess)
	r.NotEmpty(newRefresh)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	auth, _ := newAuthFixture(t)

	_, err := auth.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "correct horse",
	})
	r.NoError(err)

	_, _, _, err = auth.Login(ctx, domain.LoginRequest{Username: "alice", Password: "wrong"})
	r.ErrorIs(err, ErrInvalidCredential)

	_, _, _, err = auth.Login(ctx, domain.LoginRequest{Username: "nobody", Password: "x"})
	r.ErrorIs(err, ErrInvalidCredential)
}

func TestRegisterDuplicate(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	auth, _ := newAuthFixture(t)

	_, err := auth.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "correct horse",
	})
	r.NoError(err)

	_, err = auth.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "other@test.local",
		Password: "correct horse",
	})
	r.ErrorIs(err, repository.ErrDuplicateUser)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	auth, _ := newAuthFixture(t)

	_, err := auth.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "correct horse",
	})
	r.NoError(err)

	_, access, _, err := auth.Login(ctx, domain.LoginRequest{Username: "alice", Password: "correct horse"})
	r.NoError(err)

	_, _, err = auth.Refresh(ctx, access)
	r.Error(err)
}
