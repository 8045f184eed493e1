package repository

import (
	"edunest_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.DB.Create(a).Error
}

func (r *AssignmentRepository) Update(a *model.Assignment) error {
	return r.DB.Save(a).Error
}

func (r *AssignmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assignment{}, id).Error
}

func (r *AssignmentRepository) FindByID(id uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AssignmentRepository) FindByCourse(courseID uint) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.DB.Where("course_id = ?", courseID).Order("due_date ASC, id ASC").Find(&list).Error
	return list, err
}

// FindDueBetween 指定课程中截止日期落在 [from, to) 的作业
func (r *AssignmentRepository) FindDueBetween(courseIDs []uint, from, to time.Time) ([]model.Assignment, error) {
	var list []model.Assignment
	if len(courseIDs) == 0 {
		return list, nil
	}
	err := r.DB.
		Where("course_id IN ? AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?", courseIDs, from, to).
		Order("due_date ASC").
		Find(&list).Error
	return list, err
}

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.DB.Create(s).Error
}

func (r *SubmissionRepository) Update(s *model.Submission) error {
	return r.DB.Save(s).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *SubmissionRepository) FindByAssignmentAndUser(assignmentID, userID uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("assignment_id = ? AND user_id = ?", assignmentID, userID).First(&s).Error
	return &s, err
}

func (r *SubmissionRepository) FindByAssignment(assignmentID uint) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.Preload("User").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) DeleteByAssignment(assignmentID uint) error {
	return r.DB.Where("assignment_id = ?", assignmentID).Delete(&model.Submission{}).Error
}
