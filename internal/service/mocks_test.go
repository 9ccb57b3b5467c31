package service

import (
	"context"
	"errors"
	"sync"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/repository"
)

// In-memory repositories for service tests.

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*domain.User)}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type memProjects struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
}

func newMemProjects() *memProjects {
	return &memProjects{projects: make(map[string]*domain.Project)}
}

func (m *memProjects) Create(_ context.Context, project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *project
	m.projects[project.ID] = &copied
	return nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrProjectNotFound
}

func (m *memProjects) Update(_ context.Context, project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; !ok {
		return repository.ErrProjectNotFound
	}
	copied := *project
	m.projects[project.ID] = &copied
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return repository.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memProjects) ListAccessible(_ context.Context, userID string) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Project
	for _, p := range m.projects {
		if p.OwnerID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memBugs struct {
	mu   sync.Mutex
	bugs map[string]*domain.Bug
}

func newMemBugs() *memBugs {
	return &memBugs{bugs: make(map[string]*domain.Bug)}
}

func (m *memBugs) Create(_ context.Context, bug *domain.Bug) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *bug
	m.bugs[bug.ID] = &copied
	return nil
}

func (m *memBugs) GetByID(_ context.Context, id string) (*domain.Bug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bugs[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, repository.ErrBugNotFound
}

func (m *memBugs) Update(_ context.Context, bug *domain.Bug) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bugs[bug.ID]; !ok {
		return repository.ErrBugNotFound
	}
	copied := *bug
	m.bugs[bug.ID] = &copied
	return nil
}

func (m *memBugs) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bugs[id]; !ok {
		return repository.ErrBugNotFound
	}
	delete(m.bugs, id)
	return nil
}

func (m *memBugs) List(_ context.Context, filter domain.BugFilter) ([]*domain.Bug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Bug
	for _, b := range m.bugs {
		if filter.ProjectID != "" && b.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(b.Priority) != filter.Priority {
			continue
		}
		if filter.AssigneeID != "" && b.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.CreatorID != "" && b.CreatorID != filter.CreatorID {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memBugs) ExistsAssigned(_ context.Context, projectID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bugs {
		if b.ProjectID == projectID && b.AssigneeID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBugs) ExistsCreated(_ context.Context, projectID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bugs {
		if b.ProjectID == projectID && b.CreatorID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBugs) CountByProject(_ context.Context, projectID string) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total, open int64
	for _, b := range m.bugs {
		if b.ProjectID != projectID {
			continue
		}
		total++
		if b.Status == domain.BugStatusOpen {
			open++
		}
	}
	return total, open, nil
}

type memComments struct {
	mu       sync.Mutex
	comments []*domain.Comment
}

func newMemComments() *memComments {
	return &memComments{}
}

func (m *memComments) Create(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *comment
	m.comments = append(m.comments, &copied)
	return nil
}

func (m *memComments) List(_ context.Context, filter domain.CommentFilter) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Comment
	for _, c := range m.comments {
		if filter.BugID != "" && c.BugID != filter.BugID {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

type memActivities struct {
	mu         sync.Mutex
	activities []*domain.Activity
	failWrites bool
}

func newMemActivities() *memActivities {
	return &memActivities{}
}

func (m *memActivities) Create(_ context.Context, activity *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errors.New("write failed")
	}
	copied := *activity
	m.activities = append(m.activities, &copied)
	return nil
}

func (m *memActivities) List(_ context.Context, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Activity
	for _, a := range m.activities {
		if filter.ProjectID != "" && a.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Kind != "" && string(a.Kind) != filter.Kind {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memActivities) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activities)
}

// captureBroadcaster records every broadcast for inspection.

type broadcastCall struct {
	roomKey       string
	message       interface{}
	excludeUserID string
}

type captureBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
	err   error
}

func (b *captureBroadcaster) Broadcast(roomKey string, message interface{}, excludeUserID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{roomKey, message, excludeUserID})
	return b.err
}

func (b *captureBroadcaster) broadcasts() []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]broadcastCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// captureExporter records exported activities.

type captureExporter struct {
	mu       sync.Mutex
	exported []*domain.Activity
}

func (e *captureExporter) Produce(activity *domain.Activity) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exported = append(e.exported, activity)
	return nil
}

func (e *captureExporter) Close() {}
