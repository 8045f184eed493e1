package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=5000"`
}

type ReviewService struct {
	DB             *gorm.DB
	ReviewRepo     *repository.ReviewRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo *repository.ReviewRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
) *ReviewService {
	return &ReviewService{
		DB:             db,
		ReviewRepo:     reviewRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
	}
}

func (s *ReviewService) List(courseID uint, page, limit int) ([]model.Review, int64, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, 0, notFound(err, util.ErrCourseNotFound)
	}

	reviews, total, err := s.ReviewRepo.FindByCourse(courseID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range reviews {
		if reviews[i].User != nil {
			summary := reviews[i].User.Summary()
			reviews[i].Author = &summary
		}
	}
	return reviews, total, nil
}

// Create 只有报名学员可以评价，每人每门课一次
func (s *ReviewService) Create(userID, courseID uint, in ReviewInput) (*model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, util.ErrInvalidRating
	}
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}

	enrolled, err := s.EnrollmentRepo.IsEnrolled(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	review := &model.Review{
		UserID:   userID,
		CourseID: courseID,
		Rating:   in.Rating,
		Comment:  strings.TrimSpace(in.Comment),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		reviewRepo := s.ReviewRepo.WithTx(tx)
		if err := reviewRepo.Create(review); err != nil {
			if isDuplicate(err) {
				return util.ErrAlreadyReviewed
			}
			return err
		}

		avg, count, err := reviewRepo.RatingSummary(courseID)
		if err != nil {
			return err
		}
		return s.CourseRepo.WithTx(tx).UpdateRating(courseID, round1(avg), int(count))
	})
	if err != nil {
		return nil, err
	}

	if user, err := s.UserRepo.FindByID(userID); err == nil {
		summary := user.Summary()
		review.Author = &summary
	}
	return review, nil
}
