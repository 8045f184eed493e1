package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/testutil"
	"edunest_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 1)

	enrollment, err := env.enrollments.Enroll(f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, enrollment.Progress)
	assert.False(t, enrollment.Completed)

	_, err = env.enrollments.Enroll(f.student.ID, f.course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	course, err := env.courses.CourseRepo.FindByID(f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, course.EnrollmentCount)

	ok, err := env.enrollments.IsEnrolled(f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnroll_Rejections(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	draft := testutil.CreateCourse(t, env.db, f.instructor.ID, false)

	_, err := env.enrollments.Enroll(f.student.ID, 9999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = env.enrollments.Enroll(f.student.ID, draft.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = env.enrollments.Enroll(f.instructor.ID, f.course.ID)
	assert.ErrorIs(t, err, util.ErrOwnCourse)

	_, err = env.enrollments.GetByCourse(f.student.ID, f.course.ID)
	assert.ErrorIs(t, err, util.ErrEnrollmentMissing)
}

func TestListByUserSkipsDeletedCourses(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 1)
	other := testutil.CreateCourse(t, env.db, f.instructor.ID, true)
	testutil.Enroll(t, env.db, f.student.ID, f.course.ID)
	testutil.Enroll(t, env.db, f.student.ID, other.ID)

	require.NoError(t, env.courses.Delete(actorOf(f.instructor), f.course.ID))

	enrollments, err := env.enrollments.ListByUser(f.student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, other.ID, enrollments[0].CourseID)
	require.NotNil(t, enrollments[0].Course)
	assert.Equal(t, other.ID, enrollments[0].Course.ID)
}

func TestEnroll_ConcurrentRequestsCreateOneRow(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.enrollments.Enroll(f.student.ID, f.course.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, util.ErrAlreadyEnrolled):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	var count int64
	require.NoError(t, env.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", f.student.ID, f.course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	other := testutil.CreateUser(t, env.db, model.Student)

	_, err := env.reviews.Create(f.student.ID, f.course.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	testutil.Enroll(t, env.db, f.student.ID, f.course.ID)
	testutil.Enroll(t, env.db, other.ID, f.course.ID)

	_, err = env.reviews.Create(f.student.ID, f.course.ID, ReviewInput{Rating: 6})
	assert.ErrorIs(t, err, util.ErrInvalidRating)

	review, err := env.reviews.Create(f.student.ID, f.course.ID, ReviewInput{Rating: 5, Comment: "  great  "})
	require.NoError(t, err)
	assert.Equal(t, "great", review.Comment)
	require.NotNil(t, review.Author)
	assert.Equal(t, f.student.ID, review.Author.ID)

	_, err = env.reviews.Create(f.student.ID, f.course.ID, ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, util.ErrAlreadyReviewed)

	_, err = env.reviews.Create(other.ID, f.course.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)

	course, err := env.courses.CourseRepo.FindByID(f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, course.ReviewCount)
	assert.InDelta(t, 4.5, course.Rating, 0.001)

	list, total, err := env.reviews.List(f.course.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.NotNil(t, list[0].Author)
}

func TestAssignmentSubmissionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	instructor := actorOf(f.instructor)
	student := actorOf(f.student)

	_, err := env.assignments.Create(student, f.course.ID, AssignmentInput{Title: "Essay"})
	assert.ErrorIs(t, err, util.ErrNotCourseOwner)

	a, err := env.assignments.Create(instructor, f.course.ID, AssignmentInput{Title: "Essay"})
	require.NoError(t, err)
	assert.Equal(t, 100, a.MaxScore)

	_, err = env.assignments.Submit(student, a.ID, SubmissionInput{Content: "draft"})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	testutil.Enroll(t, env.db, f.student.ID, f.course.ID)

	_, err = env.assignments.Submit(student, a.ID, SubmissionInput{Content: "   "})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	first, err := env.assignments.Submit(student, a.ID, SubmissionInput{Content: "draft"})
	require.NoError(t, err)
	second, err := env.assignments.Submit(student, a.ID, SubmissionInput{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "final", second.Content)

	_, err = env.assignments.Grade(instructor, second.ID, GradeInput{Score: intPtr(101)})
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)

	graded, err := env.assignments.Grade(instructor, second.ID, GradeInput{Score: intPtr(88), Feedback: "good"})
	require.NoError(t, err)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 88, *graded.Score)
	assert.True(t, graded.Graded())

	_, err = env.assignments.Submit(student, a.ID, SubmissionInput{Content: "late edit"})
	assert.ErrorIs(t, err, util.ErrAlreadyGraded)

	subs, err := env.assignments.ListSubmissions(instructor, a.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].Student)
	assert.Equal(t, f.student.ID, subs[0].Student.ID)

	_, err = env.assignments.ListSubmissions(student, a.ID)
	assert.Error(t, err)
}
