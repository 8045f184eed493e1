package app

import (
	"bytes"
	"edunest_backend/internal/testutil"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router http.Handler
}

func newTestApp(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.Config(t)
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	application := New(cfg, testutil.NewDB(t), nil)
	t.Cleanup(application.Close)

	return &apiClient{t: t, router: application.Router}
}

func (c *apiClient) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.serve(req)
}

func (c *apiClient) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

// signup 注册并登录，返回令牌
func (c *apiClient) signup(username, role string) string {
	c.t.Helper()

	w, _ := c.do(http.MethodPost, "/api/register", "", map[string]string{
		"name":     username,
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"role":     role,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := c.do(http.MethodPost, "/api/login", "", map[string]string{
		"login":    username,
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(c.t, result.Token)
	return result.Token
}

func idOf(t *testing.T, env envelope) uint {
	t.Helper()
	var obj struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &obj))
	require.NotZero(t, obj.ID)
	return obj.ID
}

func TestHealthAndAuthGate(t *testing.T) {
	api := newTestApp(t)

	w, env := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Code)

	w, _ = api.do(http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/user", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	api := newTestApp(t)

	w, env := api.do(http.MethodPost, "/api/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Message)

	api.signup("ada", "student")
	w, _ = api.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Ada", "username": "ada2", "email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/api/login", "", map[string]string{"login": "ada", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	api := newTestApp(t)
	api.signup("carol", "student")

	w, _ := api.do(http.MethodPost, "/api/login", "", map[string]string{"login": "carol@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "edunest_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	// Cookie 同样可以认证
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(session)
	w, _ = api.serve(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCourseEnrollmentFlow(t *testing.T) {
	api := newTestApp(t)
	instructor := api.signup("tutor", "instructor")
	student := api.signup("student", "student")

	w, _ := api.do(http.MethodPost, "/api/courses", student, map[string]string{"title": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := api.do(http.MethodPost, "/api/courses", instructor, map[string]interface{}{
		"title":            "Go 101",
		"category":         "programming",
		"level":            "beginner",
		"published":        true,
		"learningOutcomes": []string{"goroutines", "channels"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	courseID := idOf(t, env)

	w, env = api.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/sections", courseID), instructor, map[string]string{"title": "Basics"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sectionID := idOf(t, env)

	w, env = api.do(http.MethodPost, fmt.Sprintf("/api/sections/%d/lectures", sectionID), instructor, map[string]interface{}{
		"title": "Hello", "videoUrl": "/uploads/videos/hello.mp4", "duration": 300,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lectureID := idOf(t, env)

	// 未报名：评价 403，讲座内容 403
	w, _ = api.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/reviews", courseID), student, map[string]int{"rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodGet, fmt.Sprintf("/api/lectures/%d", lectureID), student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodPost, "/api/enrollments", student, map[string]uint{"courseId": courseID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = api.do(http.MethodPost, "/api/enrollments", student, map[string]uint{"courseId": courseID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/api/lectures/%d/progress", lectureID), student, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.do(http.MethodPost, fmt.Sprintf("/api/lectures/%d/progress", lectureID), student, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Enrollment struct {
			Progress  int  `json:"progress"`
			Completed bool `json:"completed"`
		} `json:"enrollment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 100, result.Enrollment.Progress)
	assert.True(t, result.Enrollment.Completed)

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/reviews", courseID), student, map[string]interface{}{"rating": 5, "comment": "clear"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = api.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/reviews", courseID), student, map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = api.do(http.MethodGet, fmt.Sprintf("/api/courses/%d/reviews", courseID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	w, _ = api.do(http.MethodGet, "/api/courses/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = api.do(http.MethodGet, "/api/courses/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	api := newTestApp(t)
	instructor := api.signup("uploader", "instructor")
	student := api.signup("learner", "student")

	upload := func(token, filename string) *httptest.ResponseRecorder {
		body := new(bytes.Buffer)
		mw := multipart.NewWriter(body)
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload/document", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w, _ := api.serve(req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, upload(student, "notes.pdf").Code)
	assert.Equal(t, http.StatusBadRequest, upload(instructor, "notes.exe").Code)
	assert.Equal(t, http.StatusOK, upload(instructor, "notes.pdf").Code)
}

func TestCORSAllowList(t *testing.T) {
	api := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w, _ := api.serve(req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Origin", "http://evil.test")
	w, _ = api.serve(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadIgnoresDeclaredContentType(t *testing.T) {
	api := newTestApp(t)
	instructor := api.signup("videographer", "instructor")

	upload := func(filename, contentType string) *httptest.ResponseRecorder {
		body := new(bytes.Buffer)
		mw := multipart.NewWriter(body)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("MZ\x90\x00not really a video"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload/video", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+instructor)
		w, _ := api.serve(req)
		return w
	}

	w := upload("payload.exe", "video/mp4")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// 扩展名合法时不看声明的类型
	w = upload("clip.mp4", "application/x-msdownload")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCalendarEventTypes(t *testing.T) {
	api := newTestApp(t)
	student := api.signup("planner", "student")

	create := func(eventType string) int {
		w, _ := api.do(http.MethodPost, "/api/calendar/events", student, map[string]string{
			"title":     "Essay draft",
			"startTime": "2026-03-10T09:00:00Z",
			"endTime":   "2026-03-10T10:00:00Z",
			"type":      eventType,
		})
		return w.Code
	}

	for _, eventType := range []string{"personal", "lecture", "assignment", "deadline"} {
		assert.Equal(t, http.StatusCreated, create(eventType), eventType)
	}
	assert.Equal(t, http.StatusBadRequest, create("party"))
}
