package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/database"
	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestValidator() *validator.Validate {
	return NewValidator()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(database.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@campus.test",
		PasswordHash: "not-a-real-hash",
		Name:         name,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedProject stores a project owned by faculty with one group per entry in groups.
func seedProject(t *testing.T, db *gorm.DB, facultyID string, groups map[string][]string) (models.Project, map[string]models.Group) {
	t.Helper()
	project := models.Project{
		Title:     "Capstone",
		FacultyID: facultyID,
		StartDate: mustDate(t, "2024-05-01"),
		EndDate:   mustDate(t, "2024-06-30"),
	}
	require.NoError(t, db.Create(&project).Error)

	created := make(map[string]models.Group, len(groups))
	for name, members := range groups {
		group := models.Group{ProjectID: project.ID, Name: name}
		require.NoError(t, db.Omit("Members").Create(&group).Error)
		for _, studentID := range members {
			require.NoError(t, db.Omit("Student").Create(&models.GroupMember{GroupID: group.ID, StudentID: studentID}).Error)
		}
		created[name] = group
	}
	return project, created
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(dto.DateLayout, value)
	require.NoError(t, err)
	return parsed
}

type recordedActivity struct {
	entries []ActivityEntry
}

func (r *recordedActivity) Record(_ context.Context, entry ActivityEntry) {
	r.entries = append(r.entries, entry)
}
