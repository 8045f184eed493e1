package repository

import (
	"edunest_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: tx}
}

// Create 依赖 (user_id, course_id) 唯一索引
func (r *ReviewRepository) Create(review *model.Review) error {
	return r.DB.Create(review).Error
}

func (r *ReviewRepository) FindByCourse(courseID uint, page, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.DB.Model(&model.Review{}).Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

// RatingSummary 课程平均评分和评论数
func (r *ReviewRepository) RatingSummary(courseID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.DB.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&row).Error
	return row.Average, row.Count, err
}
