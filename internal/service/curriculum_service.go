package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SectionInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Order       *int   `json:"order"`
}

type LectureInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl" binding:"max=500"`
	Content     string `json:"content"`
	Duration    int    `json:"duration" binding:"gte=0"`
	Order       *int   `json:"order"`
	IsPreview   bool   `json:"isPreview"`
}

// CurriculumService 章节和讲座管理；讲座数量变化时同步课程统计和所有报名进度
type CurriculumService struct {
	DB             *gorm.DB
	Courses        *CourseService
	Progress       *ProgressService
	CourseRepo     *repository.CourseRepository
	SectionRepo    *repository.SectionRepository
	LectureRepo    *repository.LectureRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewCurriculumService(
	db *gorm.DB,
	courses *CourseService,
	progress *ProgressService,
	courseRepo *repository.CourseRepository,
	sectionRepo *repository.SectionRepository,
	lectureRepo *repository.LectureRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *CurriculumService {
	return &CurriculumService{
		DB:             db,
		Courses:        courses,
		Progress:       progress,
		CourseRepo:     courseRepo,
		SectionRepo:    sectionRepo,
		LectureRepo:    lectureRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

// canSeeContent 报名学员、课程作者和管理员可以看到讲座内容
func (s *CurriculumService) canSeeContent(actor model.Actor, course *model.Course) (bool, error) {
	if actor.CanManage(course) {
		return true, nil
	}
	if actor.IsAnonymous() {
		return false, nil
	}
	return s.EnrollmentRepo.IsEnrolled(actor.UserID, course.ID)
}

func (s *CurriculumService) ListSections(actor model.Actor, courseID uint) ([]model.Section, error) {
	course, err := s.Courses.findVisible(actor, courseID)
	if err != nil {
		return nil, err
	}

	sections, err := s.SectionRepo.FindByCourse(courseID, true)
	if err != nil {
		return nil, err
	}

	full, err := s.canSeeContent(actor, course)
	if err != nil {
		return nil, err
	}
	if !full {
		stripSections(sections)
	}
	return sections, nil
}

func (s *CurriculumService) CreateSection(actor model.Actor, courseID uint, in SectionInput) (*model.Section, error) {
	if _, err := s.Courses.findManaged(actor, courseID); err != nil {
		return nil, err
	}

	section := &model.Section{
		CourseID:    courseID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}
	if in.Order != nil {
		section.Order = *in.Order
	} else {
		order, err := s.SectionRepo.NextOrder(courseID)
		if err != nil {
			return nil, err
		}
		section.Order = order
	}

	if err := s.SectionRepo.Create(section); err != nil {
		return nil, err
	}
	return section, nil
}

// findManagedSection 章节存在且调用者能管理其课程
func (s *CurriculumService) findManagedSection(actor model.Actor, sectionID uint) (*model.Section, error) {
	section, err := s.SectionRepo.FindByID(sectionID)
	if err != nil {
		return nil, notFound(err, util.ErrSectionNotFound)
	}
	if _, err := s.Courses.findManaged(actor, section.CourseID); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *CurriculumService) UpdateSection(actor model.Actor, sectionID uint, in SectionInput) (*model.Section, error) {
	section, err := s.findManagedSection(actor, sectionID)
	if err != nil {
		return nil, err
	}

	section.Title = strings.TrimSpace(in.Title)
	section.Description = in.Description
	if in.Order != nil {
		section.Order = *in.Order
	}
	if err := s.SectionRepo.Update(section); err != nil {
		return nil, err
	}
	return section, nil
}

// DeleteSection 连同讲座一起删除
func (s *CurriculumService) DeleteSection(actor model.Actor, sectionID uint) error {
	section, err := s.findManagedSection(actor, sectionID)
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.LectureRepo.WithTx(tx).DeleteBySection(sectionID); err != nil {
			return err
		}
		return s.SectionRepo.WithTx(tx).Delete(sectionID)
	})
	if err != nil {
		return err
	}
	return s.syncCourse(section.CourseID)
}

func (s *CurriculumService) ListLectures(actor model.Actor, sectionID uint) ([]model.Lecture, error) {
	section, err := s.SectionRepo.FindByID(sectionID)
	if err != nil {
		return nil, notFound(err, util.ErrSectionNotFound)
	}
	course, err := s.Courses.findVisible(actor, section.CourseID)
	if err != nil {
		return nil, err
	}

	lectures, err := s.LectureRepo.FindBySection(sectionID)
	if err != nil {
		return nil, err
	}

	full, err := s.canSeeContent(actor, course)
	if err != nil {
		return nil, err
	}
	if !full {
		for i := range lectures {
			lectures[i].StripContent()
		}
	}
	return lectures, nil
}

// GetLecture 试看讲座对所有登录用户开放，其余需要报名
func (s *CurriculumService) GetLecture(actor model.Actor, lectureID uint) (*model.Lecture, error) {
	lecture, err := s.LectureRepo.FindByID(lectureID)
	if err != nil {
		return nil, notFound(err, util.ErrLectureNotFound)
	}
	course, err := s.Courses.findVisible(actor, lecture.CourseID)
	if err != nil {
		return nil, err
	}
	if lecture.IsPreview {
		return lecture, nil
	}

	full, err := s.canSeeContent(actor, course)
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, util.ErrNotEnrolled
	}
	return lecture, nil
}

func (s *CurriculumService) CreateLecture(actor model.Actor, sectionID uint, in LectureInput) (*model.Lecture, error) {
	section, err := s.findManagedSection(actor, sectionID)
	if err != nil {
		return nil, err
	}

	lecture := &model.Lecture{
		SectionID:   sectionID,
		CourseID:    section.CourseID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Content:     in.Content,
		Duration:    in.Duration,
		IsPreview:   in.IsPreview,
	}
	if in.Order != nil {
		lecture.Order = *in.Order
	} else {
		order, err := s.LectureRepo.NextOrder(sectionID)
		if err != nil {
			return nil, err
		}
		lecture.Order = order
	}

	if err := s.LectureRepo.Create(lecture); err != nil {
		return nil, err
	}
	if err := s.syncCourse(section.CourseID); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *CurriculumService) UpdateLecture(actor model.Actor, lectureID uint, in LectureInput) (*model.Lecture, error) {
	lecture, err := s.LectureRepo.FindByID(lectureID)
	if err != nil {
		return nil, notFound(err, util.ErrLectureNotFound)
	}
	if _, err := s.Courses.findManaged(actor, lecture.CourseID); err != nil {
		return nil, err
	}

	lecture.Title = strings.TrimSpace(in.Title)
	lecture.Description = in.Description
	lecture.VideoURL = in.VideoURL
	lecture.Content = in.Content
	lecture.Duration = in.Duration
	lecture.IsPreview = in.IsPreview
	if in.Order != nil {
		lecture.Order = *in.Order
	}

	if err := s.LectureRepo.Update(lecture); err != nil {
		return nil, err
	}
	// 讲座数量不变，只需更新总时长
	if err := s.CourseRepo.UpdateTotals(lecture.CourseID); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *CurriculumService) DeleteLecture(actor model.Actor, lectureID uint) error {
	lecture, err := s.LectureRepo.FindByID(lectureID)
	if err != nil {
		return notFound(err, util.ErrLectureNotFound)
	}
	if _, err := s.Courses.findManaged(actor, lecture.CourseID); err != nil {
		return err
	}

	if err := s.LectureRepo.Delete(lectureID); err != nil {
		return err
	}
	return s.syncCourse(lecture.CourseID)
}

// syncCourse 更新课程讲座数/总时长，再重新聚合该课程所有报名的进度
func (s *CurriculumService) syncCourse(courseID uint) error {
	if err := s.CourseRepo.UpdateTotals(courseID); err != nil {
		return err
	}
	if err := s.Progress.RecalculateCourse(courseID); err != nil {
		logger.Log.Error("Failed to recalculate course progress", zap.Uint("courseID", courseID), zap.Error(err))
		return err
	}
	return nil
}
