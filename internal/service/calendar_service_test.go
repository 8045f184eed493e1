package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/testutil"
	"edunest_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarMergesDeadlines(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	testutil.Enroll(t, env.db, f.student.ID, f.course.ID)
	stranger := testutil.CreateUser(t, env.db, model.Student)

	march := model.TimeRange{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	due := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	later := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := env.assignments.Create(actorOf(f.instructor), f.course.ID, AssignmentInput{Title: "Essay", DueDate: &due})
	require.NoError(t, err)
	_, err = env.assignments.Create(actorOf(f.instructor), f.course.ID, AssignmentInput{Title: "Final", DueDate: &later})
	require.NoError(t, err)
	_, err = env.assignments.Create(actorOf(f.instructor), f.course.ID, AssignmentInput{Title: "Open ended"})
	require.NoError(t, err)

	event, err := env.calendar.Create(f.student.ID, CalendarEventInput{
		Title:     "Study group",
		StartTime: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventPersonal, event.Type)

	entries, err := env.calendar.List(f.student.ID, march)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Study group", entries[0].Title)
	assert.False(t, entries[0].ReadOnly)
	assert.Equal(t, "Essay", entries[1].Title)
	assert.True(t, entries[1].ReadOnly)
	assert.Equal(t, model.EventDeadline, entries[1].Type)
	require.NotNil(t, entries[1].AssignmentID)

	// 讲师同样能看到自己课程的截止日期
	entries, err = env.calendar.List(f.instructor.ID, march)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Essay", entries[0].Title)

	entries, err = env.calendar.List(stranger.ID, march)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = env.calendar.List(f.student.ID, model.TimeRange{From: march.To, To: march.From})
	assert.ErrorIs(t, err, util.ErrInvalidTimeRange)
}

func TestCalendarEventOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, model.Student)
	other := testutil.CreateUser(t, env.db, model.Student)
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := env.calendar.Create(owner.ID, CalendarEventInput{Title: "Bad", StartTime: start, EndTime: start.Add(-time.Hour)})
	assert.ErrorIs(t, err, util.ErrInvalidTimeRange)

	event, err := env.calendar.Create(owner.ID, CalendarEventInput{Title: "Review", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)

	_, err = env.calendar.Update(other.ID, event.ID, CalendarEventInput{Title: "Mine now", StartTime: start, EndTime: start})
	assert.ErrorIs(t, err, util.ErrEventNotFound)
	assert.ErrorIs(t, env.calendar.Delete(other.ID, event.ID), util.ErrEventNotFound)

	updated, err := env.calendar.Update(owner.ID, event.ID, CalendarEventInput{Title: "Review v2", StartTime: start, EndTime: start.Add(2 * time.Hour), Type: model.EventLecture})
	require.NoError(t, err)
	assert.Equal(t, "Review v2", updated.Title)
	assert.Equal(t, model.EventLecture, updated.Type)

	require.NoError(t, env.calendar.Delete(owner.ID, event.ID))
	assert.ErrorIs(t, env.calendar.Delete(owner.ID, event.ID), util.ErrEventNotFound)
}

func TestCurrentMonth(t *testing.T) {
	r := CurrentMonth(time.Date(2026, 12, 17, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), r.To)
}
