package testutil

import (
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/pkg/database"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB 每个测试独立的内存 SQLite；单连接避免 shared cache 下的锁冲突
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Config 本地存储落在测试临时目录
func Config(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "test"},
		JWT: config.JWTConfig{
			Secret:     "edunest-test-secret-edunest-test-secret",
			ExpireTime: time.Hour,
		},
		Session: config.SessionConfig{CookieName: "edunest_session"},
		Storage: config.StorageConfig{Type: "local", LocalPath: dir + "/uploads"},
		Upload: config.UploadConfig{
			MaxVideoMB:    5,
			MaxDocumentMB: 1,
			MaxImageMB:    2,
			TempDir:       dir + "/tmp",
		},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
}

func CreateUser(t *testing.T, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()

	name := uuid.NewString()[:8]
	user := &model.User{
		Name:     "user " + name,
		Username: "u_" + name,
		Email:    name + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateCourse(t *testing.T, db *gorm.DB, instructorID uint, published bool) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:        "Course " + uuid.NewString()[:8],
		Category:     "programming",
		Level:        model.LevelBeginner,
		InstructorID: instructorID,
		Published:    published,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func CreateSection(t *testing.T, db *gorm.DB, courseID uint, order int) *model.Section {
	t.Helper()

	section := &model.Section{CourseID: courseID, Title: fmt.Sprintf("Section %d", order), Order: order}
	require.NoError(t, db.Create(section).Error)
	return section
}

// CreateLecture 直接写库，不会触发课程统计和进度重算
func CreateLecture(t *testing.T, db *gorm.DB, section *model.Section, order int) *model.Lecture {
	t.Helper()

	lecture := &model.Lecture{
		SectionID: section.ID,
		CourseID:  section.CourseID,
		Title:     fmt.Sprintf("Lecture %d", order),
		VideoURL:  "/uploads/videos/demo.mp4",
		Content:   "notes",
		Duration:  60,
		Order:     order,
	}
	require.NoError(t, db.Create(lecture).Error)
	return lecture
}

func Enroll(t *testing.T, db *gorm.DB, userID, courseID uint) *model.Enrollment {
	t.Helper()

	enrollment := &model.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: time.Now()}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}
