package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/testutil"
	"edunest_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructorProfilesAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 1)
	draft := testutil.CreateCourse(t, env.db, f.instructor.ID, false)
	second := testutil.CreateUser(t, env.db, model.Student)

	svc := NewInstructorService(repository.NewUserRepository(env.db), repository.NewCourseRepository(env.db), repository.NewEnrollmentRepository(env.db))

	for _, u := range []*model.User{f.student, second} {
		_, err := env.enrollments.Enroll(u.ID, f.course.ID)
		require.NoError(t, err)
	}
	_, err := env.progress.UpdateLectureProgress(f.student.ID, f.lectures[0].ID, model.ProgressUpdate{Completed: boolPtr(true)})
	require.NoError(t, err)
	_, err = env.reviews.Create(f.student.ID, f.course.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)
	_, err = env.reviews.Create(second.ID, f.course.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)

	dashboard, err := svc.Dashboard(f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.TotalCourses)
	assert.Equal(t, int64(2), dashboard.TotalStudents)
	assert.Equal(t, 2, dashboard.TotalReviews)
	assert.InDelta(t, 4.5, dashboard.AverageRating, 0.001)
	assert.InDelta(t, 50.0, dashboard.CompletionRate, 0.001)
	require.Len(t, dashboard.Courses, 2)

	byID := map[uint]model.InstructorCourseStat{}
	for _, c := range dashboard.Courses {
		byID[c.CourseID] = c
	}
	assert.Equal(t, int64(2), byID[f.course.ID].EnrollmentCount)
	assert.Equal(t, int64(1), byID[f.course.ID].CompletedCount)
	assert.InDelta(t, 50.0, byID[f.course.ID].AverageProgress, 0.001)
	assert.False(t, byID[draft.ID].Published)
	assert.Zero(t, byID[draft.ID].EnrollmentCount)

	// 公开资料只统计已发布课程
	profiles, err := svc.List()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, int64(1), profiles[0].CourseCount)
	assert.Equal(t, int64(2), profiles[0].StudentCount)
	assert.InDelta(t, 4.5, profiles[0].AverageRating, 0.001)

	profile, err := svc.Get(f.instructor.ID)
	require.NoError(t, err)
	require.Len(t, profile.Courses, 1)
	assert.Equal(t, f.course.ID, profile.Courses[0].ID)

	_, err = svc.Get(f.student.ID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
