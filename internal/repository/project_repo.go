package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// ProjectRepository persists projects together with their milestones and groups.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (models.Project, error)
	GetDetail(ctx context.Context, id string) (models.Project, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.Project, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Project, error)
	GetGroup(ctx context.Context, id string) (models.Group, error)
	IsGroupMember(ctx context.Context, groupID, studentID string) (bool, error)
	ListMemberships(ctx context.Context, projectID string) ([]models.MembershipRow, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository constructs a project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create stores the project, its milestones, its groups and their members in one transaction.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		milestones := project.Milestones
		groups := project.Groups

		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}

		for i := range milestones {
			milestones[i].ProjectID = project.ID
			if err := tx.Create(&milestones[i]).Error; err != nil {
				return err
			}
		}

		for i := range groups {
			groups[i].ProjectID = project.ID
			members := groups[i].Members
			if err := tx.Omit(clause.Associations).Create(&groups[i]).Error; err != nil {
				return err
			}
			for j := range members {
				members[j].GroupID = groups[i].ID
				if err := tx.Omit(clause.Associations).Create(&members[j]).Error; err != nil {
					return err
				}
			}
			groups[i].Members = members
		}

		project.Milestones = milestones
		project.Groups = groups
		return nil
	})
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (r *projectRepository) GetDetail(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Groups.Members").
		Preload("Groups.Members.Student").
		First(&project, "id = ?", id).Error
	if err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (r *projectRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("faculty_id = ?", facultyID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Table("project_groups").
			Select("project_groups.project_id").
			Joins("JOIN group_members ON group_members.group_id = project_groups.id").
			Where("group_members.student_id = ?", studentID)).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) GetGroup(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *projectRepository) IsGroupMember(ctx context.Context, groupID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Count(&count).Error
	return count > 0, err
}

// ListMemberships returns every (group, student) pair of the project with the student's identity.
func (r *projectRepository) ListMemberships(ctx context.Context, projectID string) ([]models.MembershipRow, error) {
	var rows []models.MembershipRow
	err := r.db.WithContext(ctx).
		Table("project_groups").
		Select("project_groups.id AS group_id, project_groups.name AS group_name, users.id AS student_id, users.name AS student_name, users.email AS student_email").
		Joins("JOIN group_members ON group_members.group_id = project_groups.id").
		Joins("JOIN users ON users.id = group_members.student_id").
		Where("project_groups.project_id = ?", projectID).
		Order("project_groups.name ASC, users.name ASC").
		Scan(&rows).Error
	return rows, err
}
