package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emoncse/bugtracker/internal/domain"
)

func TestCanAccessProject(t *testing.T) {
	ctx := context.Background()

	projects := newMemProjects()
	bugs := newMemBugs()
	access := NewAccessService(projects, bugs)

	require.NoError(t, projects.Create(ctx, &domain.Project{
		ID:      "p1",
		Name:    "Tracker",
		OwnerID: "owner",
	}))
	require.NoError(t, bugs.Create(ctx, &domain.Bug{
		ID:         "b1",
		ProjectID:  "p1",
		CreatorID:  "creator",
		AssigneeID: "assignee",
		Status:     domain.BugStatusOpen,
	}))

	tests := []struct {
		name    string
		project string
		user    string
		want    bool
	}{
		{"owner allowed", "p1", "owner", true},
		{"assignee allowed", "p1", "assignee", true},
		{"creator allowed", "p1", "creator", true},
		{"stranger denied", "p1", "stranger", false},
		{"unknown project denied", "missing", "owner", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := access.CanAccessProject(ctx, tt.project, tt.user)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAccessRevokedWithBug(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	projects := newMemProjects()
	bugs := newMemBugs()
	access := NewAccessService(projects, bugs)

	r.NoError(projects.Create(ctx, &domain.Project{ID: "p1", OwnerID: "owner"}))
	r.NoError(bugs.Create(ctx, &domain.Bug{
		ID:         "b1",
		ProjectID:  "p1",
		CreatorID:  "creator",
		AssigneeID: "assignee",
	}))

	ok, err := access.CanAccessProject(ctx, "p1", "assignee")
	r.NoError(err)
	r.True(ok)

	// Removing the only bug linking the user removes the grant.
	r.NoError(bugs.Delete(ctx, "b1"))
	ok, err = access.CanAccessProject(ctx, "p1", "assignee")
	r.NoError(err)
	r.False(ok)
}
