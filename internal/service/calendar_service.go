package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"sort"
	"strings"
	"time"
)

const (
	entrySourceEvent      = "event"
	entrySourceAssignment = "assignment"
)

type CalendarEventInput struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description"`
	StartTime   time.Time       `json:"startTime" binding:"required"`
	EndTime     time.Time       `json:"endTime" binding:"required"`
	Type        model.EventType `json:"type" binding:"omitempty,oneof=personal lecture assignment deadline"`
	CourseID    *uint           `json:"courseId"`
}

type CalendarService struct {
	CalendarRepo   *repository.CalendarRepository
	AssignmentRepo *repository.AssignmentRepository
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewCalendarService(
	calendarRepo *repository.CalendarRepository,
	assignmentRepo *repository.AssignmentRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
) *CalendarService {
	return &CalendarService{
		CalendarRepo:   calendarRepo,
		AssignmentRepo: assignmentRepo,
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
	}
}

// CurrentMonth 默认查询区间
func CurrentMonth(now time.Time) model.TimeRange {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return model.TimeRange{From: from, To: from.AddDate(0, 1, 0)}
}

// List 个人事件 + 已报名或自己授课课程的作业截止日期（只读）
func (s *CalendarService) List(userID uint, r model.TimeRange) ([]model.CalendarEntry, error) {
	if r.From.IsZero() && r.To.IsZero() {
		r = CurrentMonth(time.Now())
	} else if r.To.IsZero() {
		r.To = r.From.AddDate(0, 1, 0)
	} else if r.From.IsZero() {
		r.From = r.To.AddDate(0, -1, 0)
	}
	if !r.To.After(r.From) {
		return nil, util.ErrInvalidTimeRange
	}

	events, err := s.CalendarRepo.FindOverlapping(userID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	entries := make([]model.CalendarEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, model.CalendarEntry{
			ID:          e.ID,
			Source:      entrySourceEvent,
			Title:       e.Title,
			Description: e.Description,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Type:        e.Type,
			CourseID:    e.CourseID,
		})
	}

	courseIDs, err := s.relatedCourseIDs(userID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.AssignmentRepo.FindDueBetween(courseIDs, r.From, r.To)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		a := assignments[i]
		courseID := a.CourseID
		assignmentID := a.ID
		entries = append(entries, model.CalendarEntry{
			ID:           a.ID,
			Source:       entrySourceAssignment,
			Title:        a.Title,
			Description:  a.Description,
			StartTime:    *a.DueDate,
			EndTime:      *a.DueDate,
			Type:         model.EventDeadline,
			CourseID:     &courseID,
			AssignmentID: &assignmentID,
			ReadOnly:     true,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
	return entries, nil
}

func (s *CalendarService) relatedCourseIDs(userID uint) ([]uint, error) {
	enrolled, err := s.EnrollmentRepo.CourseIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	teaching, err := s.CourseRepo.FindIDsByInstructor(userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(enrolled)+len(teaching))
	ids := make([]uint, 0, len(enrolled)+len(teaching))
	for _, id := range append(enrolled, teaching...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func applyEventInput(e *model.CalendarEvent, in CalendarEventInput) error {
	if in.EndTime.Before(in.StartTime) {
		return util.ErrInvalidTimeRange
	}
	e.Title = strings.TrimSpace(in.Title)
	e.Description = in.Description
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.CourseID = in.CourseID
	e.Type = in.Type
	if e.Type == "" {
		e.Type = model.EventPersonal
	}
	return nil
}

func (s *CalendarService) Create(userID uint, in CalendarEventInput) (*model.CalendarEvent, error) {
	event := &model.CalendarEvent{UserID: userID}
	if err := applyEventInput(event, in); err != nil {
		return nil, err
	}
	if err := s.CalendarRepo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

// findOwned 别人的事件按不存在处理
func (s *CalendarService) findOwned(userID, eventID uint) (*model.CalendarEvent, error) {
	event, err := s.CalendarRepo.FindByID(eventID)
	if err != nil {
		return nil, notFound(err, util.ErrEventNotFound)
	}
	if event.UserID != userID {
		return nil, util.ErrEventNotFound
	}
	return event, nil
}

func (s *CalendarService) Update(userID, eventID uint, in CalendarEventInput) (*model.CalendarEvent, error) {
	event, err := s.findOwned(userID, eventID)
	if err != nil {
		return nil, err
	}
	if err := applyEventInput(event, in); err != nil {
		return nil, err
	}
	if err := s.CalendarRepo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *CalendarService) Delete(userID, eventID uint) error {
	if _, err := s.findOwned(userID, eventID); err != nil {
		return err
	}
	return s.CalendarRepo.Delete(eventID)
}
