package service

import (
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/testutil"
	"sync"
	"testing"

	"gorm.io/gorm"
)

type pushedMessage struct {
	userIDs []uint
	msg     WSMessage
}

// recordingNotifier 记录推送，代替消息中心
type recordingNotifier struct {
	mu     sync.Mutex
	pushed []pushedMessage
}

func (n *recordingNotifier) PushToUsers(userIDs []uint, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushed = append(n.pushed, pushedMessage{userIDs: userIDs, msg: msg})
}

func (n *recordingNotifier) events() []pushedMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]pushedMessage(nil), n.pushed...)
}

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	notifier    *recordingNotifier
	courses     *CourseService
	curriculum  *CurriculumService
	progress    *ProgressService
	enrollments *EnrollmentService
	reviews     *ReviewService
	assignments *AssignmentService
	calendar    *CalendarService
	messages    *MessageService
	uploads     *UploadService
	auth        *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testutil.Config(t)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	storage := NewStorageService(cfg)
	notifier := &recordingNotifier{}

	env := &testEnv{db: db, cfg: cfg, notifier: notifier}
	env.courses = NewCourseService(db, courseRepo, sectionRepo, lectureRepo, enrollmentRepo, storage, cfg.Upload)
	env.progress = NewProgressService(db, courseRepo, sectionRepo, lectureRepo, enrollmentRepo, progressRepo)
	env.curriculum = NewCurriculumService(db, env.courses, env.progress, courseRepo, sectionRepo, lectureRepo, enrollmentRepo)
	env.enrollments = NewEnrollmentService(db, courseRepo, enrollmentRepo)
	env.reviews = NewReviewService(db, repository.NewReviewRepository(db), courseRepo, enrollmentRepo, userRepo)
	env.assignments = NewAssignmentService(db, env.courses, assignmentRepo, repository.NewSubmissionRepository(db), sectionRepo, enrollmentRepo)
	env.calendar = NewCalendarService(repository.NewCalendarRepository(db), assignmentRepo, enrollmentRepo, courseRepo)
	env.messages = NewMessageService(repository.NewMessageRepository(db), userRepo, notifier)
	env.uploads = NewUploadService(storage, cfg.Upload)
	env.auth = NewAuthService(userRepo, nil, cfg)
	return env
}

func actorOf(u *model.User) model.Actor {
	return model.Actor{UserID: u.ID, Role: u.Role}
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
