package service

import (
	"bytes"
	"context"
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"edunest_backend/pkg/monitoring"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultCoursePageSize = 12
	maxCoursePageSize     = 100
)

// CourseInput 创建/更新课程的请求体（PUT 语义，整体替换可编辑字段）
type CourseInput struct {
	Title            string            `json:"title" binding:"required,max=255"`
	Subtitle         string            `json:"subtitle" binding:"max=255"`
	Description      string            `json:"description"`
	Category         string            `json:"category" binding:"max=100"`
	Level            model.CourseLevel `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Language         string            `json:"language" binding:"max=20"`
	Price            float64           `json:"price" binding:"gte=0"`
	Thumbnail        string            `json:"thumbnail"`
	Published        *bool             `json:"published"`
	LearningOutcomes []string          `json:"learningOutcomes"`
	Requirements     []string          `json:"requirements"`
}

func (in CourseInput) apply(course *model.Course) {
	course.Title = strings.TrimSpace(in.Title)
	course.Subtitle = in.Subtitle
	course.Description = in.Description
	course.Category = strings.TrimSpace(in.Category)
	course.Level = in.Level
	if course.Level == "" {
		course.Level = model.LevelAll
	}
	course.Language = in.Language
	if course.Language == "" {
		course.Language = "en"
	}
	course.Price = in.Price
	if in.Thumbnail != "" {
		course.Thumbnail = in.Thumbnail
	}
	if in.Published != nil {
		course.Published = *in.Published
	}
	course.LearningOutcomes = in.LearningOutcomes
	course.Requirements = in.Requirements
}

type CourseService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	SectionRepo    *repository.SectionRepository
	LectureRepo    *repository.LectureRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Storage        *StorageService
	Upload         config.UploadConfig
}

func NewCourseService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	sectionRepo *repository.SectionRepository,
	lectureRepo *repository.LectureRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	storage *StorageService,
	uploadCfg config.UploadConfig,
) *CourseService {
	return &CourseService{
		DB:             db,
		CourseRepo:     courseRepo,
		SectionRepo:    sectionRepo,
		LectureRepo:    lectureRepo,
		EnrollmentRepo: enrollmentRepo,
		Storage:        storage,
		Upload:         uploadCfg,
	}
}

func (s *CourseService) List(actor model.Actor, filter model.CourseFilter) ([]model.Course, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultCoursePageSize
	}
	if filter.Limit > maxCoursePageSize {
		filter.Limit = maxCoursePageSize
	}

	// 讲师查看自己的课程列表时包含草稿
	filter.IncludeDrafts = actor.IsAdmin() ||
		(filter.InstructorID != 0 && filter.InstructorID == actor.UserID)

	return s.CourseRepo.List(filter)
}

func (s *CourseService) Categories() ([]model.CategoryCount, error) {
	return s.CourseRepo.Categories()
}

// findVisible 未发布的课程只有作者和管理员可见
func (s *CourseService) findVisible(actor model.Actor, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Published && !actor.CanManage(course) {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) findManaged(actor model.Actor, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !actor.CanManage(course) {
		return nil, util.ErrNotCourseOwner
	}
	return course, nil
}

// Detail 课程详情；未报名的访客看不到非试看讲座的视频和正文
func (s *CourseService) Detail(actor model.Actor, courseID uint) (*model.CourseDetail, error) {
	course, err := s.CourseRepo.FindWithCurriculum(courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if !course.Published && !actor.CanManage(course) {
		return nil, util.ErrCourseNotFound
	}

	detail := &model.CourseDetail{Course: *course}
	if course.Instructor != nil {
		summary := course.Instructor.Summary()
		detail.Instructor = &summary
	}

	if !actor.IsAnonymous() {
		enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(actor.UserID, courseID)
		if err == nil {
			detail.Enrollment = enrollment
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if detail.Enrollment == nil && !actor.CanManage(course) {
		stripSections(detail.Sections)
	}
	return detail, nil
}

func stripSections(sections []model.Section) {
	for i := range sections {
		for j := range sections[i].Lectures {
			sections[i].Lectures[j].StripContent()
		}
	}
}

func (s *CourseService) Create(actor model.Actor, in CourseInput) (*model.Course, error) {
	course := &model.Course{InstructorID: actor.UserID, Published: true}
	in.apply(course)

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	logger.Log.Info("Course created", zap.Uint("courseID", course.ID), zap.Uint("instructorID", actor.UserID))
	return course, nil
}

func (s *CourseService) Update(actor model.Actor, courseID uint, in CourseInput) (*model.Course, error) {
	course, err := s.findManaged(actor, courseID)
	if err != nil {
		return nil, err
	}
	in.apply(course)
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return s.CourseRepo.FindByID(courseID)
}

// Delete 级联删除章节和讲座
func (s *CourseService) Delete(actor model.Actor, courseID uint) error {
	if _, err := s.findManaged(actor, courseID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.LectureRepo.WithTx(tx).DeleteByCourse(courseID); err != nil {
			return err
		}
		if err := s.SectionRepo.WithTx(tx).DeleteByCourse(courseID); err != nil {
			return err
		}
		return s.CourseRepo.WithTx(tx).Delete(courseID)
	})
}

// UploadThumbnail 缩放并转成 WebP 后保存为课程封面
func (s *CourseService) UploadThumbnail(ctx context.Context, actor model.Actor, courseID uint, filename string, size int64, r io.Reader) (*model.Course, error) {
	course, err := s.findManaged(actor, courseID)
	if err != nil {
		return nil, err
	}

	if !util.HasAllowedExtension(filename, util.AllowedImageExtensions) {
		monitoring.UploadCounter.WithLabelValues(util.UploadImage, "rejected").Inc()
		return nil, util.ErrInvalidFileType
	}
	if limit := s.Upload.MaxUploadBytes(util.UploadImage); limit > 0 && size > limit {
		monitoring.UploadCounter.WithLabelValues(util.UploadImage, "rejected").Inc()
		return nil, util.ErrFileTooLarge
	}

	data, err := util.EncodeThumbnailWebP(r, filename, util.ThumbnailMaxWidth, util.ThumbnailMaxHeight)
	if err != nil {
		monitoring.UploadCounter.WithLabelValues(util.UploadImage, "rejected").Inc()
		return nil, err
	}

	key := fmt.Sprintf("thumbnails/%s.webp", uuid.NewString())
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "image/webp")
	if err != nil {
		monitoring.UploadCounter.WithLabelValues(util.UploadImage, "failed").Inc()
		return nil, err
	}

	if err := s.CourseRepo.UpdateThumbnail(course.ID, url); err != nil {
		return nil, err
	}
	monitoring.UploadCounter.WithLabelValues(util.UploadImage, "stored").Inc()
	return s.CourseRepo.FindByID(course.ID)
}
