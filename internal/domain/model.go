package domain

import (
	"time"
)

// GORM models for the tracker tables. Kept separate from the domain
// structs so wire/API shapes never leak storage concerns.

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(200);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// ProjectModel is the GORM model for the projects table.
type ProjectModel struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"`
	Name          string    `gorm:"type:varchar(200);not null"`
	Description   string    `gorm:"type:text"`
	OwnerID       string    `gorm:"type:varchar(36);index;not null"`
	OwnerUsername string    `gorm:"type:varchar(50);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (ProjectModel) TableName() string { return "projects" }

// ToDomain converts ProjectModel to domain Project.
func (m *ProjectModel) ToDomain() *Project {
	return &Project{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		OwnerID:       m.OwnerID,
		OwnerUsername: m.OwnerUsername,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ProjectToModel converts domain Project to ProjectModel.
func ProjectToModel(p *Project) *ProjectModel {
	return &ProjectModel{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		OwnerID:       p.OwnerID,
		OwnerUsername: p.OwnerUsername,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// BugModel is the GORM model for the bugs table.
type BugModel struct {
	ID               string    `gorm:"type:varchar(36);primaryKey"`
	Title            string    `gorm:"type:varchar(200);not null"`
	Description      string    `gorm:"type:text"`
	Status           string    `gorm:"type:varchar(20);index;not null;default:'open'"`
	Priority         string    `gorm:"type:varchar(20);index;not null;default:'medium'"`
	ProjectID        string    `gorm:"type:varchar(36);index;not null"`
	AssigneeID       string    `gorm:"type:varchar(36);index"`
	AssigneeUsername string    `gorm:"type:varchar(50)"`
	CreatorID        string    `gorm:"type:varchar(36);index;not null"`
	CreatorUsername  string    `gorm:"type:varchar(50);not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (BugModel) TableName() string { return "bugs" }

// ToDomain converts BugModel to domain Bug.
func (m *BugModel) ToDomain() *Bug {
	return &Bug{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		Status:           BugStatus(m.Status),
		Priority:         BugPriority(m.Priority),
		ProjectID:        m.ProjectID,
		AssigneeID:       m.AssigneeID,
		AssigneeUsername: m.AssigneeUsername,
		CreatorID:        m.CreatorID,
		CreatorUsername:  m.CreatorUsername,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// BugToModel converts domain Bug to BugModel.
func BugToModel(b *Bug) *BugModel {
	return &BugModel{
		ID:               b.ID,
		Title:            b.Title,
		Description:      b.Description,
		Status:           string(b.Status),
		Priority:         string(b.Priority),
		ProjectID:        b.ProjectID,
		AssigneeID:       b.AssigneeID,
		AssigneeUsername: b.AssigneeUsername,
		CreatorID:        b.CreatorID,
		CreatorUsername:  b.CreatorUsername,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"`
	BugID          string    `gorm:"type:varchar(36);index;not null"`
	AuthorID       string    `gorm:"type:varchar(36);index;not null"`
	AuthorUsername string    `gorm:"type:varchar(50);not null"`
	Message        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (CommentModel) TableName() string { return "comments" }

// ToDomain converts CommentModel to domain Comment.
func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID:             m.ID,
		BugID:          m.BugID,
		AuthorID:       m.AuthorID,
		AuthorUsername: m.AuthorUsername,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CommentToModel converts domain Comment to CommentModel.
func CommentToModel(c *Comment) *CommentModel {
	return &CommentModel{
		ID:             c.ID,
		BugID:          c.BugID,
		AuthorID:       c.AuthorID,
		AuthorUsername: c.AuthorUsername,
		Message:        c.Message,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ActivityModel is the GORM model for the activities table.
type ActivityModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	Kind        string    `gorm:"type:varchar(20);index;not null"`
	Description string    `gorm:"type:text;not null"`
	ProjectID   string    `gorm:"type:varchar(36);index;not null"`
	UserID      string    `gorm:"type:varchar(36);index;not null"`
	Username    string    `gorm:"type:varchar(50);not null"`
	BugID       string    `gorm:"type:varchar(36);index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (ActivityModel) TableName() string { return "activities" }

// ToDomain converts ActivityModel to domain Activity.
func (m *ActivityModel) ToDomain() *Activity {
	return &Activity{
		ID:          m.ID,
		Kind:        EventKind(m.Kind),
		Description: m.Description,
		ProjectID:   m.ProjectID,
		UserID:      m.UserID,
		Username:    m.Username,
		BugID:       m.BugID,
		CreatedAt:   m.CreatedAt,
	}
}

// ActivityToModel converts domain Activity to ActivityModel.
func ActivityToModel(a *Activity) *ActivityModel {
	return &ActivityModel{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Description: a.Description,
		ProjectID:   a.ProjectID,
		UserID:      a.UserID,
		Username:    a.Username,
		BugID:       a.BugID,
		CreatedAt:   a.CreatedAt,
	}
}
