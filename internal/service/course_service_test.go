package service

import (
	"bytes"
	"context"
	"edunest_backend/internal/model"
	"edunest_backend/internal/testutil"
	"edunest_backend/internal/util"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseVisibility(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	draft := testutil.CreateCourse(t, env.db, f.instructor.ID, false)
	anonymous := model.Actor{}

	list, total, err := env.courses.List(anonymous, model.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, f.course.ID, list[0].ID)

	// 讲师查看自己的列表时包含草稿
	_, total, err = env.courses.List(actorOf(f.instructor), model.CourseFilter{InstructorID: f.instructor.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = env.courses.Detail(anonymous, draft.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = env.courses.Detail(actorOf(f.student), draft.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	detail, err := env.courses.Detail(actorOf(f.instructor), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, detail.ID)
}

func TestCourseDetailHidesContentUntilEnrolled(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 2)
	require.NoError(t, env.db.Model(f.lectures[0]).Update("is_preview", true).Error)

	detail, err := env.courses.Detail(actorOf(f.student), f.course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Sections, 1)
	lectures := detail.Sections[0].Lectures
	require.Len(t, lectures, 2)
	assert.NotEmpty(t, lectures[0].VideoURL, "preview lecture stays visible")
	assert.Empty(t, lectures[1].VideoURL)
	assert.Empty(t, lectures[1].Content)
	assert.Nil(t, detail.Enrollment)
	require.NotNil(t, detail.Instructor)
	assert.Equal(t, f.instructor.ID, detail.Instructor.ID)

	_, err = env.curriculum.GetLecture(actorOf(f.student), f.lectures[1].ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	testutil.Enroll(t, env.db, f.student.ID, f.course.ID)

	detail, err = env.courses.Detail(actorOf(f.student), f.course.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Sections[0].Lectures[1].VideoURL)
	assert.NotNil(t, detail.Enrollment)

	lecture, err := env.curriculum.GetLecture(actorOf(f.student), f.lectures[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "notes", lecture.Content)
}

func TestCourseOwnership(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 1)
	rival := testutil.CreateUser(t, env.db, model.Instructor)
	admin := testutil.CreateUser(t, env.db, model.Admin)

	_, err := env.courses.Update(actorOf(rival), f.course.ID, CourseInput{Title: "Hijacked"})
	assert.ErrorIs(t, err, util.ErrNotCourseOwner)

	updated, err := env.courses.Update(actorOf(admin), f.course.ID, CourseInput{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	_, err = env.curriculum.CreateSection(actorOf(rival), f.course.ID, SectionInput{Title: "Extra"})
	assert.ErrorIs(t, err, util.ErrNotCourseOwner)

	require.NoError(t, env.courses.Delete(actorOf(f.instructor), f.course.ID))
	_, err = env.courses.Detail(actorOf(f.instructor), f.course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = env.curriculum.GetLecture(actorOf(f.instructor), f.lectures[0].ID)
	assert.ErrorIs(t, err, util.ErrLectureNotFound)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 50 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestUploadThumbnailResizesToWebP(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	data := pngBytes(t, 2000, 1000)

	course, err := env.courses.UploadThumbnail(context.Background(), actorOf(f.instructor), f.course.ID, "cover.png", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(course.Thumbnail, "/uploads/thumbnails/"))
	assert.True(t, strings.HasSuffix(course.Thumbnail, ".webp"))

	key := strings.TrimPrefix(course.Thumbnail, "/uploads/")
	file, err := os.Open(filepath.Join(env.cfg.Storage.LocalPath, filepath.FromSlash(key)))
	require.NoError(t, err)
	defer file.Close()

	cfg, err := webp.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 640, cfg.Height)

	_, err = env.courses.UploadThumbnail(context.Background(), actorOf(f.instructor), f.course.ID, "cover.gif", 10, bytes.NewReader([]byte("GIF89a")))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	_, err = env.courses.UploadThumbnail(context.Background(), actorOf(f.instructor), f.course.ID, "cover.png", 4, bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, util.ErrInvalidImage)

	_, err = env.courses.UploadThumbnail(context.Background(), actorOf(f.student), f.course.ID, "cover.png", int64(len(data)), bytes.NewReader(data))
	assert.ErrorIs(t, err, util.ErrNotCourseOwner)
}

// startedReader 第一次 Read 时通知调用方
type startedReader struct {
	io.Reader
	once    sync.Once
	started chan struct{}
}

func (r *startedReader) Read(p []byte) (int, error) {
	r.once.Do(func() { close(r.started) })
	return r.Reader.Read(p)
}

func TestUploadThumbnailKeepsConcurrentCounters(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	data := pngBytes(t, 64, 64)

	pr, pw := io.Pipe()
	body := &startedReader{Reader: pr, started: make(chan struct{})}

	type result struct {
		course *model.Course
		err    error
	}
	done := make(chan result, 1)
	go func() {
		c, err := env.courses.UploadThumbnail(context.Background(), actorOf(f.instructor), f.course.ID, "cover.png", int64(len(data)), body)
		done <- result{c, err}
	}()

	// 课程已读出，图片尚未到达时有人选课
	<-body.started
	_, err := env.enrollments.Enroll(f.student.ID, f.course.ID)
	require.NoError(t, err)

	_, err = pw.Write(data)
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.course.EnrollmentCount)
	assert.NotEmpty(t, res.course.Thumbnail)

	stored, err := env.courses.CourseRepo.FindByID(f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EnrollmentCount)
}

func TestUpdateCourseKeepsAggregates(t *testing.T) {
	env := newTestEnv(t)
	f := newCourseFixture(t, env, 0)
	testutil.Enroll(t, env.db, f.student.ID, f.course.ID)

	_, err := env.reviews.Create(f.student.ID, f.course.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.Course{}).Where("id = ?", f.course.ID).
		Updates(map[string]interface{}{"enrollment_count": 3, "total_lectures": 7, "total_duration": 420}).Error)

	updated, err := env.courses.Update(actorOf(f.instructor), f.course.ID, CourseInput{
		Title:     "Renamed",
		Price:     19.5,
		Published: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.False(t, updated.Published)
	assert.Equal(t, 3, updated.EnrollmentCount)
	assert.Equal(t, 7, updated.TotalLectures)
	assert.Equal(t, 420, updated.TotalDuration)
	assert.Equal(t, 1, updated.ReviewCount)
	assert.InDelta(t, 4.0, updated.Rating, 0.001)
}
