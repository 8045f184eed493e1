package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"edunest_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewEnrollmentService(db *gorm.DB, courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

// Enroll 报名课程，(user, course) 唯一索引保证并发下只有一条记录
func (s *EnrollmentService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Published {
		return nil, util.ErrCourseNotFound
	}
	if course.InstructorID == userID {
		return nil, util.ErrOwnCourse
	}

	enrollment := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.EnrollmentRepo.WithTx(tx).Create(enrollment); err != nil {
			if isDuplicate(err) {
				return util.ErrAlreadyEnrolled
			}
			return err
		}
		return s.CourseRepo.WithTx(tx).IncrementEnrollmentCount(courseID)
	})
	if err != nil {
		return nil, err
	}

	monitoring.EnrollmentCounter.Inc()
	logger.Log.Info("User enrolled",
		zap.Uint("userID", userID),
		zap.Uint("courseID", courseID))
	return enrollment, nil
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.FindByUser(userID)
}

func (s *EnrollmentService) GetByCourse(userID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, notFound(err, util.ErrEnrollmentMissing)
	}
	return enrollment, nil
}

func (s *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.EnrollmentRepo.IsEnrolled(userID, courseID)
}
