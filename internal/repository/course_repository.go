package repository

import (
	"edunest_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

// 讲师可编辑的列；统计列只由 UpdateTotals、UpdateRating 和选课计数更新
var editableCourseColumns = []string{
	"title", "subtitle", "description", "category", "level", "language",
	"price", "thumbnail", "published", "learning_outcomes", "requirements", "updated_at",
}

// Update 只写可编辑列，不覆盖并发更新的统计列
func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Model(course).Select(editableCourseColumns).Updates(course).Error
}

func (r *CourseRepository) UpdateThumbnail(id uint, url string) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Update("thumbnail", url).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// FindWithCurriculum 课程 + 有序章节 + 有序讲座 + 讲师
func (r *CourseRepository) FindWithCurriculum(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Instructor").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Sections.Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) List(filter model.CourseFilter) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})

	if !filter.IncludeDrafts {
		query = query.Where("published = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.InstructorID != 0 {
		query = query.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "popular":
		query = query.Order("enrollment_count DESC")
	case "rating":
		query = query.Order("rating DESC")
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Instructor").Offset(offset).Limit(filter.Limit).Order("id DESC").Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Categories() ([]model.CategoryCount, error) {
	var result []model.CategoryCount
	err := r.DB.Model(&model.Course{}).
		Select("category, COUNT(*) AS count").
		Where("published = ? AND category <> ''", true).
		Group("category").
		Order("count DESC").
		Scan(&result).Error
	return result, err
}

func (r *CourseRepository) FindByInstructor(instructorID uint, publishedOnly bool) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.Where("instructor_id = ?", instructorID)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	err := query.Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindIDsByInstructor(instructorID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Course{}).Where("instructor_id = ?", instructorID).Pluck("id", &ids).Error
	return ids, err
}

func (r *CourseRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Course{}).Pluck("id", &ids).Error
	return ids, err
}

// UpdateTotals 重新统计课程讲座数与总时长
func (r *CourseRepository) UpdateTotals(courseID uint) error {
	var totals struct {
		Count    int
		Duration int
	}
	err := r.DB.Model(&model.Lecture{}).
		Select("COUNT(*) AS count, COALESCE(SUM(duration), 0) AS duration").
		Where("course_id = ?", courseID).
		Scan(&totals).Error
	if err != nil {
		return err
	}
	return r.DB.Model(&model.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"total_lectures": totals.Count,
		"total_duration": totals.Duration,
	}).Error
}

func (r *CourseRepository) IncrementEnrollmentCount(courseID uint) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
}

func (r *CourseRepository) UpdateRating(courseID uint, rating float64, count int) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"rating":       rating,
		"review_count": count,
	}).Error
}

// InstructorStats 讲师名下已发布课程数、学员数、平均评分
type InstructorStats struct {
	InstructorID  uint
	CourseCount   int64
	StudentCount  int64
	AverageRating float64
}

func (r *CourseRepository) InstructorStats(instructorIDs []uint) (map[uint]InstructorStats, error) {
	result := make(map[uint]InstructorStats, len(instructorIDs))
	if len(instructorIDs) == 0 {
		return result, nil
	}
	var rows []InstructorStats
	err := r.DB.Model(&model.Course{}).
		Select("instructor_id, COUNT(*) AS course_count, COALESCE(SUM(enrollment_count), 0) AS student_count, "+
			"COALESCE(AVG(CASE WHEN review_count > 0 THEN rating END), 0) AS average_rating").
		Where("instructor_id IN ? AND published = ?", instructorIDs, true).
		Group("instructor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.InstructorID] = row
	}
	return result, nil
}
