package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type AssignmentInput struct {
	Title         string     `json:"title" binding:"required,max=255"`
	Description   string     `json:"description"`
	SectionID     *uint      `json:"sectionId"`
	DueDate       *time.Time `json:"dueDate"`
	MaxScore      int        `json:"maxScore" binding:"omitempty,min=1,max=1000"`
	AttachmentURL string     `json:"attachmentUrl" binding:"max=500"`
}

type SubmissionInput struct {
	Content string `json:"content"`
	FileURL string `json:"fileUrl" binding:"max=500"`
}

type GradeInput struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback"`
}

type AssignmentService struct {
	DB             *gorm.DB
	Courses        *CourseService
	AssignmentRepo *repository.AssignmentRepository
	SubmissionRepo *repository.SubmissionRepository
	SectionRepo    *repository.SectionRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewAssignmentService(
	db *gorm.DB,
	courses *CourseService,
	assignmentRepo *repository.AssignmentRepository,
	submissionRepo *repository.SubmissionRepository,
	sectionRepo *repository.SectionRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *AssignmentService {
	return &AssignmentService{
		DB:             db,
		Courses:        courses,
		AssignmentRepo: assignmentRepo,
		SubmissionRepo: submissionRepo,
		SectionRepo:    sectionRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

func (s *AssignmentService) apply(a *model.Assignment, in AssignmentInput) error {
	if in.SectionID != nil {
		section, err := s.SectionRepo.FindByID(*in.SectionID)
		if err != nil {
			return notFound(err, util.ErrSectionNotFound)
		}
		if section.CourseID != a.CourseID {
			return util.ErrSectionNotFound
		}
	}

	a.Title = strings.TrimSpace(in.Title)
	a.Description = in.Description
	a.SectionID = in.SectionID
	a.DueDate = in.DueDate
	a.AttachmentURL = in.AttachmentURL
	a.MaxScore = in.MaxScore
	if a.MaxScore == 0 {
		a.MaxScore = 100
	}
	return nil
}

func (s *AssignmentService) Create(actor model.Actor, courseID uint, in AssignmentInput) (*model.Assignment, error) {
	if _, err := s.Courses.findManaged(actor, courseID); err != nil {
		return nil, err
	}

	a := &model.Assignment{CourseID: courseID}
	if err := s.apply(a, in); err != nil {
		return nil, err
	}
	if err := s.AssignmentRepo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) findManaged(actor model.Actor, assignmentID uint) (*model.Assignment, error) {
	a, err := s.AssignmentRepo.FindByID(assignmentID)
	if err != nil {
		return nil, notFound(err, util.ErrAssignmentNotFound)
	}
	if _, err := s.Courses.findManaged(actor, a.CourseID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) Update(actor model.Actor, assignmentID uint, in AssignmentInput) (*model.Assignment, error) {
	a, err := s.findManaged(actor, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(a, in); err != nil {
		return nil, err
	}
	if err := s.AssignmentRepo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) Delete(actor model.Actor, assignmentID uint) error {
	if _, err := s.findManaged(actor, assignmentID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubmissionRepository(tx).DeleteByAssignment(assignmentID); err != nil {
			return err
		}
		return repository.NewAssignmentRepository(tx).Delete(assignmentID)
	})
}

// checkAccess 报名学员或课程作者/管理员
func (s *AssignmentService) checkAccess(actor model.Actor, courseID uint) error {
	course, err := s.Courses.findVisible(actor, courseID)
	if err != nil {
		return err
	}
	if actor.CanManage(course) {
		return nil
	}
	enrolled, err := s.EnrollmentRepo.IsEnrolled(actor.UserID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return util.ErrNotEnrolled
	}
	return nil
}

func (s *AssignmentService) ListByCourse(actor model.Actor, courseID uint) ([]model.Assignment, error) {
	if err := s.checkAccess(actor, courseID); err != nil {
		return nil, err
	}
	return s.AssignmentRepo.FindByCourse(courseID)
}

func (s *AssignmentService) Get(actor model.Actor, assignmentID uint) (*model.Assignment, error) {
	a, err := s.AssignmentRepo.FindByID(assignmentID)
	if err != nil {
		return nil, notFound(err, util.ErrAssignmentNotFound)
	}
	if err := s.checkAccess(actor, a.CourseID); err != nil {
		return nil, err
	}
	return a, nil
}

// Submit 批改前可以重复提交覆盖，批改后锁定
func (s *AssignmentService) Submit(actor model.Actor, assignmentID uint, in SubmissionInput) (*model.Submission, error) {
	if strings.TrimSpace(in.Content) == "" && in.FileURL == "" {
		return nil, util.ErrInvalidInput
	}

	a, err := s.AssignmentRepo.FindByID(assignmentID)
	if err != nil {
		return nil, notFound(err, util.ErrAssignmentNotFound)
	}
	enrolled, err := s.EnrollmentRepo.IsEnrolled(actor.UserID, a.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	now := time.Now()
	existing, err := s.SubmissionRepo.FindByAssignmentAndUser(assignmentID, actor.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub := &model.Submission{
			AssignmentID: assignmentID,
			UserID:       actor.UserID,
			Content:      in.Content,
			FileURL:      in.FileURL,
			SubmittedAt:  now,
		}
		err := s.SubmissionRepo.Create(sub)
		if err == nil {
			return sub, nil
		}
		if !isDuplicate(err) {
			return nil, err
		}
		// 并发提交，另一条已经写入，按覆盖处理
		existing, err = s.SubmissionRepo.FindByAssignmentAndUser(assignmentID, actor.UserID)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if existing.Graded() {
		return nil, util.ErrAlreadyGraded
	}
	existing.Content = in.Content
	existing.FileURL = in.FileURL
	existing.SubmittedAt = now
	if err := s.SubmissionRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *AssignmentService) ListSubmissions(actor model.Actor, assignmentID uint) ([]model.Submission, error) {
	if _, err := s.findManaged(actor, assignmentID); err != nil {
		return nil, err
	}

	subs, err := s.SubmissionRepo.FindByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].User != nil {
			summary := subs[i].User.Summary()
			subs[i].Student = &summary
		}
	}
	return subs, nil
}

// Grade 分数范围 [0, maxScore]，可以重新批改
func (s *AssignmentService) Grade(actor model.Actor, submissionID uint, in GradeInput) (*model.Submission, error) {
	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, notFound(err, util.ErrSubmissionNotFound)
	}
	a, err := s.findManaged(actor, sub.AssignmentID)
	if err != nil {
		return nil, err
	}

	if in.Score == nil || *in.Score < 0 || *in.Score > a.MaxScore {
		return nil, util.ErrScoreOutOfRange
	}

	now := time.Now()
	score := *in.Score
	sub.Score = &score
	sub.Feedback = in.Feedback
	sub.GradedAt = &now
	if err := s.SubmissionRepo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}
