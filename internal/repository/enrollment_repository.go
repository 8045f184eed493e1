package repository

import (
	"edunest_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

// Create 依赖 (user_id, course_id) 唯一索引，重复时返回 gorm.ErrDuplicatedKey
func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) Update(enrollment *model.Enrollment) error {
	return r.DB.Save(enrollment).Error
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	return &enrollment, err
}

// FindByUserAndCourseForUpdate 在事务内对报名行加写锁，SQLite 下忽略锁子句
func (r *EnrollmentRepository) FindByUserAndCourseForUpdate(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) IsEnrolled(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// FindByUser 跳过已软删除的课程
func (r *EnrollmentRepository) FindByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Preload("Course").
		Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.deleted_at IS NULL").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.updated_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) FindByCourse(courseID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("course_id = ?", courseID).Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CourseIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).Where("user_id = ?", userID).Pluck("course_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// CourseEnrollmentStats 单门课程报名统计
type CourseEnrollmentStats struct {
	CourseID        uint
	EnrollmentCount int64
	CompletedCount  int64
	AverageProgress float64
}

func (r *EnrollmentRepository) StatsByCourses(courseIDs []uint) (map[uint]CourseEnrollmentStats, error) {
	result := make(map[uint]CourseEnrollmentStats, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}
	var rows []CourseEnrollmentStats
	err := r.DB.Model(&model.Enrollment{}).
		Select("course_id, COUNT(*) AS enrollment_count, "+
			"SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed_count, "+
			"COALESCE(AVG(progress), 0) AS average_progress").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.CourseID] = row
	}
	return result, nil
}
