package service

import (
	"context"
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"edunest_backend/pkg/monitoring"
	"edunest_backend/pkg/tracing"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	SectionRepo    *repository.SectionRepository
	LectureRepo    *repository.LectureRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewProgressService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	sectionRepo *repository.SectionRepository,
	lectureRepo *repository.LectureRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
) *ProgressService {
	return &ProgressService{
		DB:             db,
		CourseRepo:     courseRepo,
		SectionRepo:    sectionRepo,
		LectureRepo:    lectureRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
	}
}

// Percentage 向下取整，只有全部完成才会是 100；没有讲座的课程为 0
func Percentage(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(completed * 100 / total)
}

// lookupLecture 讲座及其所属章节、课程都必须存在
func (s *ProgressService) lookupLecture(lectureID uint) (*model.Lecture, error) {
	lecture, err := s.LectureRepo.FindByID(lectureID)
	if err != nil {
		return nil, notFound(err, util.ErrLectureNotFound)
	}
	if _, err := s.SectionRepo.FindByID(lecture.SectionID); err != nil {
		return nil, notFound(err, util.ErrSectionNotFound)
	}
	if _, err := s.CourseRepo.FindByID(lecture.CourseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	return lecture, nil
}

// UpdateLectureProgress 写入讲座进度并在同一事务中重新聚合报名进度
func (s *ProgressService) UpdateLectureProgress(userID, lectureID uint, update model.ProgressUpdate) (*model.ProgressResult, error) {
	lecture, err := s.lookupLecture(lectureID)
	if err != nil {
		return nil, err
	}

	var result model.ProgressResult
	var becameComplete bool

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		enrollmentRepo := s.EnrollmentRepo.WithTx(tx)
		progressRepo := s.ProgressRepo.WithTx(tx)

		enrollment, err := enrollmentRepo.FindByUserAndCourseForUpdate(userID, lecture.CourseID)
		if err != nil {
			return notFound(err, util.ErrNotEnrolled)
		}

		progress, err := progressRepo.FindByUserAndLecture(userID, lectureID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = &model.LectureProgress{UserID: userID, LectureID: lectureID}
		} else if err != nil {
			return err
		}

		now := time.Now()
		progress.EnrollmentID = enrollment.ID
		if update.Completed != nil {
			progress.Completed = *update.Completed
		}
		if update.LastWatchedPosition != nil {
			pos := *update.LastWatchedPosition
			if pos < 0 {
				pos = 0
			}
			progress.LastWatchedPosition = pos
		}
		if progress.Completed {
			if progress.CompletedAt == nil {
				progress.CompletedAt = &now
			}
		} else {
			progress.CompletedAt = nil
		}
		progress.UpdatedAt = now

		if err := progressRepo.Upsert(progress); err != nil {
			return err
		}

		wasComplete := enrollment.Completed
		if err := s.recalculate(tx, enrollment); err != nil {
			return err
		}
		becameComplete = !wasComplete && enrollment.Completed

		result.LectureProgress = progress
		result.Enrollment = enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ProgressUpdateCounter.WithLabelValues(strconv.FormatBool(becameComplete)).Inc()
	if becameComplete {
		logger.Log.Info("Course completed",
			zap.Uint("userID", userID),
			zap.Uint("courseID", lecture.CourseID))
	}
	return &result, nil
}

// recalculate 按课程当前所有章节的讲座重新计算报名进度
func (s *ProgressService) recalculate(tx *gorm.DB, enrollment *model.Enrollment) error {
	total, err := s.LectureRepo.WithTx(tx).CountByCourse(enrollment.CourseID)
	if err != nil {
		return err
	}
	completed, err := s.ProgressRepo.WithTx(tx).CountCompletedByCourse(enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return err
	}

	progress := Percentage(completed, total)
	done := progress == 100
	if progress == enrollment.Progress && done == enrollment.Completed {
		return nil
	}

	enrollment.Progress = progress
	enrollment.Completed = done
	if done {
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	} else {
		enrollment.CompletedAt = nil
	}
	return s.EnrollmentRepo.WithTx(tx).Update(enrollment)
}

func (s *ProgressService) GetLectureProgress(userID, lectureID uint) (*model.LectureProgress, error) {
	lecture, err := s.lookupLecture(lectureID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, lecture.CourseID)
	if err != nil {
		return nil, notFound(err, util.ErrNotEnrolled)
	}

	progress, err := s.ProgressRepo.FindByUserAndLecture(userID, lectureID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 还没看过，返回未保存的零值
		return &model.LectureProgress{
			UserID:       userID,
			LectureID:    lectureID,
			EnrollmentID: enrollment.ID,
		}, nil
	}
	return progress, err
}

func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*model.CourseProgress, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, notFound(err, util.ErrNotEnrolled)
	}

	rows, err := s.ProgressRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	lectures := make(map[uint]*model.LectureProgress, len(rows))
	for i := range rows {
		lectures[rows[i].LectureID] = &rows[i]
	}
	return &model.CourseProgress{Enrollment: enrollment, Lectures: lectures}, nil
}

func (s *ProgressService) RecalculateEnrollment(enrollment *model.Enrollment) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.recalculate(tx, enrollment)
	})
}

// RecalculateCourse 课程讲座数变化后重新聚合所有报名记录
func (s *ProgressService) RecalculateCourse(courseID uint) error {
	enrollments, err := s.EnrollmentRepo.FindByCourse(courseID)
	if err != nil {
		return err
	}
	for i := range enrollments {
		if err := s.RecalculateEnrollment(&enrollments[i]); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateAll 定时对账任务
func (s *ProgressService) RecalculateAll(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.RecalculateAll")
	defer func() { tracing.EndSpan(span, err) }()

	ids, err := s.CourseRepo.AllIDs()
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("courses", len(ids)))

	start := time.Now()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.RecalculateCourse(id); err != nil {
			logger.Log.Error("Failed to reconcile course progress", zap.Uint("courseID", id), zap.Error(err))
		}
	}

	logger.Log.Info("Progress reconciliation finished",
		zap.Int("courses", len(ids)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
