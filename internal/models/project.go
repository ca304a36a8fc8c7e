package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Project is a faculty-owned assignment that students complete in groups.
type Project struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	FacultyID   string      `gorm:"size:36;not null;index" json:"faculty_id"`
	StartDate   time.Time   `gorm:"not null" json:"start_date"`
	EndDate     time.Time   `gorm:"not null" json:"end_date"`
	Status      string      `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	Milestones  []Milestone `gorm:"constraint:OnDelete:CASCADE" json:"milestones,omitempty"`
	Groups      []Group     `gorm:"constraint:OnDelete:CASCADE" json:"groups,omitempty"`
}

// BeforeCreate assigns identifiers and defaults.
func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	return nil
}

// Milestone is a dated checkpoint within a project.
type Milestone struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string    `gorm:"size:36;not null;index" json:"project_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	Weight      float64   `gorm:"not null;default:1" json:"weight"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns identifiers and defaults.
func (m *Milestone) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Weight <= 0 {
		m.Weight = 1.0
	}
	return nil
}

// Group is a team of students working on a project.
type Group struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string        `gorm:"size:36;not null;index" json:"project_id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Members   []GroupMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TableName avoids the GROUPS keyword in SQL dialects that reserve it.
func (Group) TableName() string { return "project_groups" }

// BeforeCreate assigns the identifier.
func (g *Group) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// GroupMember links a student to a group.
type GroupMember struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	GroupID   string    `gorm:"size:36;not null;uniqueIndex:idx_group_member" json:"group_id"`
	StudentID string    `gorm:"size:36;not null;uniqueIndex:idx_group_member;index" json:"student_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
	Student   User      `gorm:"foreignKey:StudentID" json:"student"`
}

// BeforeCreate assigns the identifier.
func (m *GroupMember) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MembershipRow is a flattened (group, student) pair used by analytics.
type MembershipRow struct {
	GroupID      string
	GroupName    string
	StudentID    string
	StudentName  string
	StudentEmail string
}
