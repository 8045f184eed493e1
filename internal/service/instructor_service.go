package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"math"
)

type InstructorService struct {
	UserRepo       *repository.UserRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewInstructorService(userRepo *repository.UserRepository, courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository) *InstructorService {
	return &InstructorService{
		UserRepo:       userRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func profileOf(user *model.User, stats repository.InstructorStats) model.InstructorProfile {
	return model.InstructorProfile{
		UserSummary:   user.Summary(),
		Bio:           user.Bio,
		CourseCount:   stats.CourseCount,
		StudentCount:  stats.StudentCount,
		AverageRating: round1(stats.AverageRating),
	}
}

func (s *InstructorService) List() ([]model.InstructorProfile, error) {
	users, err := s.UserRepo.FindByRole(model.Instructor)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	stats, err := s.CourseRepo.InstructorStats(ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]model.InstructorProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, profileOf(&users[i], stats[users[i].ID]))
	}
	return profiles, nil
}

// Get 讲师资料和已发布的课程
func (s *InstructorService) Get(id uint) (*model.InstructorProfile, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	if user.Role != model.Instructor && user.Role != model.Admin {
		return nil, util.ErrUserNotFound
	}

	stats, err := s.CourseRepo.InstructorStats([]uint{id})
	if err != nil {
		return nil, err
	}
	courses, err := s.CourseRepo.FindByInstructor(id, true)
	if err != nil {
		return nil, err
	}

	profile := profileOf(user, stats[id])
	profile.Courses = courses
	return &profile, nil
}

// Dashboard 讲师自己的全部课程（含草稿）统计
func (s *InstructorService) Dashboard(instructorID uint) (*model.InstructorDashboard, error) {
	courses, err := s.CourseRepo.FindByInstructor(instructorID, false)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	stats, err := s.EnrollmentRepo.StatsByCourses(ids)
	if err != nil {
		return nil, err
	}

	dashboard := &model.InstructorDashboard{
		TotalCourses: len(courses),
		Courses:      make([]model.InstructorCourseStat, 0, len(courses)),
	}

	var completed int64
	var ratingSum float64
	for _, c := range courses {
		st := stats[c.ID]
		dashboard.Courses = append(dashboard.Courses, model.InstructorCourseStat{
			CourseID:        c.ID,
			Title:           c.Title,
			Published:       c.Published,
			EnrollmentCount: st.EnrollmentCount,
			CompletedCount:  st.CompletedCount,
			AverageProgress: round1(st.AverageProgress),
			Rating:          c.Rating,
			ReviewCount:     c.ReviewCount,
		})
		dashboard.TotalStudents += st.EnrollmentCount
		dashboard.TotalReviews += c.ReviewCount
		completed += st.CompletedCount
		ratingSum += c.Rating * float64(c.ReviewCount)
	}

	if dashboard.TotalReviews > 0 {
		dashboard.AverageRating = round1(ratingSum / float64(dashboard.TotalReviews))
	}
	if dashboard.TotalStudents > 0 {
		dashboard.CompletionRate = round1(float64(completed) * 100 / float64(dashboard.TotalStudents))
	}
	return dashboard, nil
}
