package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
)

type trackerFixture struct {
	tracker     TrackerService
	projects    *memProjects
	bugs        *memBugs
	activities  *memActivities
	broadcaster *captureBroadcaster
	users       *memUsers
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()

	projects := newMemProjects()
	bugs := newMemBugs()
	comments := newMemComments()
	activities := newMemActivities()
	users := newMemUsers()
	broadcaster := &captureBroadcaster{}

	access := NewAccessService(projects, bugs)
	notifier := NewNotificationService(activities, broadcaster, nil)
	tracker := NewTrackerService(projects, bugs, comments, activities, users, access, notifier)

	return &trackerFixture{
		tracker:     tracker,
		projects:    projects,
		bugs:        bugs,
		activities:  activities,
		broadcaster: broadcaster,
		users:       users,
	}
}

var (
	alice = domain.Actor{ID: "u1", Username: "alice"}
	bob   = domain.Actor{ID: "u2", Username: "bob"}
)

func TestCreateProjectNotifies(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)
	r.Equal("u1", project.OwnerID)
	r.Equal("alice", project.OwnerUsername)

	r.Equal(1, f.activities.count())
	calls := f.broadcaster.broadcasts()
	r.NotEmpty(calls)
	r.Equal(domain.RoomKey(project.ID), calls[0].roomKey)
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)

	name := "Renamed"
	_, err = f.tracker.UpdateProject(ctx, project.ID, domain.UpdateProjectRequest{Name: &name}, bob)
	r.ErrorIs(err, ErrForbidden)

	updated, err := f.tracker.UpdateProject(ctx, project.ID, domain.UpdateProjectRequest{Name: &name}, alice)
	r.NoError(err)
	r.Equal("Renamed", updated.Name)
}

func TestCreateBugRequiresProjectAccess(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)

	_, err = f.tracker.CreateBug(ctx, domain.CreateBugRequest{
		Title:     "Crash",
		ProjectID: project.ID,
	}, bob)
	r.ErrorIs(err, ErrForbidden)

	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{
		Title:     "Crash",
		ProjectID: project.ID,
	}, alice)
	r.NoError(err)
	r.Equal(domain.BugStatusOpen, bug.Status)
	r.Equal(domain.BugPriorityMedium, bug.Priority)
}

func TestCreateBugUnknownProject(t *testing.T) {
	r := require.New(t)
	f := newTrackerFixture(t)

	_, err := f.tracker.CreateBug(context.Background(), domain.CreateBugRequest{
		Title:     "Crash",
		ProjectID: "missing",
	}, alice)
	r.ErrorIs(err, repository.ErrProjectNotFound)
}

func TestBugGrantsAccessToAssignee(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	r.NoError(f.users.Create(ctx, &domain.User{ID: "u2", Username: "bob", Email: "bob@test.local"}))

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)

	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{
		Title:      "Crash",
		ProjectID:  project.ID,
		AssigneeID: "u2",
	}, alice)
	r.NoError(err)
	r.Equal("bob", bug.AssigneeUsername)

	// The assignment itself grants bob read access.
	got, err := f.tracker.GetBug(ctx, bug.ID, "u2")
	r.NoError(err)
	r.Equal(bug.ID, got.ID)
}

func TestUpdateBugStatusTransitions(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)
	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{Title: "Crash", ProjectID: project.ID}, alice)
	r.NoError(err)

	bad := "closed"
	_, err = f.tracker.UpdateBug(ctx, bug.ID, domain.UpdateBugRequest{Status: &bad}, alice)
	r.ErrorIs(err, ErrInvalidStatus)

	inProgress := string(domain.BugStatusInProgress)
	updated, err := f.tracker.UpdateBug(ctx, bug.ID, domain.UpdateBugRequest{Status: &inProgress}, alice)
	r.NoError(err)
	r.Equal(domain.BugStatusInProgress, updated.Status)

	// The status change produced its own event kind.
	calls := f.broadcaster.broadcasts()
	var kinds []domain.EventKind
	for _, call := range calls {
		if n, ok := call.message.(*domain.NotificationMessage); ok {
			kinds = append(kinds, n.NotificationType)
		}
	}
	r.Contains(kinds, domain.EventBugStatusChanged)
}

func TestUpdateBugSameStatusIsPlainUpdate(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)
	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{Title: "Crash", ProjectID: project.ID}, alice)
	r.NoError(err)

	same := string(domain.BugStatusOpen)
	title := "Crash on save"
	_, err = f.tracker.UpdateBug(ctx, bug.ID, domain.UpdateBugRequest{Status: &same, Title: &title}, alice)
	r.NoError(err)

	for _, call := range f.broadcaster.broadcasts() {
		if n, ok := call.message.(*domain.NotificationMessage); ok {
			r.NotEqual(domain.EventBugStatusChanged, n.NotificationType)
		}
	}
}

func TestUnassignBug(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	r.NoError(f.users.Create(ctx, &domain.User{ID: "u2", Username: "bob", Email: "bob@test.local"}))

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)
	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{
		Title:      "Crash",
		ProjectID:  project.ID,
		AssigneeID: "u2",
	}, alice)
	r.NoError(err)

	empty := ""
	updated, err := f.tracker.UpdateBug(ctx, bug.ID, domain.UpdateBugRequest{AssigneeID: &empty}, alice)
	r.NoError(err)
	r.Empty(updated.AssigneeID)
	r.Empty(updated.AssigneeUsername)
}

func TestCommentNotifiesRoom(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)
	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{Title: "Crash", ProjectID: project.ID}, alice)
	r.NoError(err)

	comment, err := f.tracker.CreateComment(ctx, domain.CreateCommentRequest{
		BugID:   bug.ID,
		Message: "reproduced on 1.4",
	}, alice)
	r.NoError(err)
	r.Equal("alice", comment.AuthorUsername)

	var sawComment bool
	for _, call := range f.broadcaster.broadcasts() {
		if n, ok := call.message.(*domain.NotificationMessage); ok && n.NotificationType == domain.EventCommentAdded {
			sawComment = true
			r.Equal(comment.ID, n.Data["comment_id"])
			// alice is creator and owner at once, so she appears once.
			r.Equal([]string{"u1"}, n.Data["recipients"])
		}
	}
	r.True(sawComment)
}

func TestListActivitiesRequiresAccess(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)

	_, err = f.tracker.ListActivities(ctx, domain.ActivityFilter{ProjectID: project.ID}, "u2")
	r.ErrorIs(err, ErrForbidden)

	activities, err := f.tracker.ListActivities(ctx, domain.ActivityFilter{ProjectID: project.ID}, "u1")
	r.NoError(err)
	r.Len(activities, 1)
	r.Equal(domain.EventProjectCreated, activities[0].Kind)
}

func TestListActivitiesUnfilteredStaysInAccessibleProjects(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	_, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)

	// bob has no relation to alice's project, so even the unfiltered
	// listing shows him nothing.
	got, err := f.tracker.ListActivities(ctx, domain.ActivityFilter{}, "u2")
	r.NoError(err)
	r.Empty(got)

	got, err = f.tracker.ListActivities(ctx, domain.ActivityFilter{}, "u1")
	r.NoError(err)
	r.Len(got, 1)

	// bob's own project keeps his listing scoped to it.
	_, err = f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Side"}, bob)
	r.NoError(err)

	got, err = f.tracker.ListActivities(ctx, domain.ActivityFilter{}, "u2")
	r.NoError(err)
	r.Len(got, 1)
	r.Equal(domain.EventProjectCreated, got[0].Kind)
}

func TestDeleteBugOwnerOrCreator(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := newTrackerFixture(t)

	project, err := f.tracker.CreateProject(ctx, domain.CreateProjectRequest{Name: "Tracker"}, alice)
	r.NoError(err)
	bug, err := f.tracker.CreateBug(ctx, domain.CreateBugRequest{Title: "Crash", ProjectID: project.ID}, alice)
	r.NoError(err)

	r.ErrorIs(f.tracker.DeleteBug(ctx, bug.ID, "u2"), ErrForbidden)
	r.NoError(f.tracker.DeleteBug(ctx, bug.ID, "u1"))
	r.ErrorIs(f.tracker.DeleteBug(ctx, bug.ID, "u1"), repository.ErrBugNotFound)
}
