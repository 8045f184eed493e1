package repository

import (
	"edunest_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) FindByUserAndLecture(userID, lectureID uint) (*model.LectureProgress, error) {
	var progress model.LectureProgress
	err := r.DB.Where("user_id = ? AND lecture_id = ?", userID, lectureID).First(&progress).Error
	return &progress, err
}

// Upsert 按 (user_id, lecture_id) 插入或更新，并发上报不会产生重复行
func (r *ProgressRepository) Upsert(progress *model.LectureProgress) error {
	// 主键交给数据库，冲突只按唯一索引判断
	progress.ID = 0
	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lecture_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enrollment_id",
			"completed",
			"last_watched_position",
			"completed_at",
			"updated_at",
		}),
	}).Create(progress).Error
	if err != nil {
		return err
	}

	// 冲突更新时不同驱动回填的主键不一致，重新读取一次
	saved, err := r.FindByUserAndLecture(progress.UserID, progress.LectureID)
	if err != nil {
		return err
	}
	*progress = *saved
	return nil
}

func (r *ProgressRepository) courseScope(userID, courseID uint) *gorm.DB {
	return r.DB.Model(&model.LectureProgress{}).
		Joins("JOIN lectures ON lectures.id = lecture_progress.lecture_id AND lectures.deleted_at IS NULL").
		Joins("JOIN sections ON sections.id = lectures.section_id AND sections.deleted_at IS NULL").
		Where("lecture_progress.user_id = ? AND lectures.course_id = ?", userID, courseID)
}

// CountCompletedByCourse 用户在课程中已完成的（仍存在的）讲座数
func (r *ProgressRepository) CountCompletedByCourse(userID, courseID uint) (int64, error) {
	var count int64
	err := r.courseScope(userID, courseID).
		Where("lecture_progress.completed = ?", true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) FindByUserAndCourse(userID, courseID uint) ([]model.LectureProgress, error) {
	var progress []model.LectureProgress
	err := r.courseScope(userID, courseID).
		Select("lecture_progress.*").
		Find(&progress).Error
	return progress, err
}
