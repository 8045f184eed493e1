package middleware

import (
	"context"
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type revokedSessions map[string]bool

func (r revokedSessions) ValidateSession(_ context.Context, claims *util.Claims) error {
	if r[claims.ID] {
		return util.ErrSessionRevoked
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{Secret: "middleware-test-secret-0123456789"},
		Session: config.SessionConfig{CookieName: "edunest_session"},
	}
}

func tokenFor(t *testing.T, cfg *config.Config, role model.UserRole) (string, *util.Claims) {
	t.Helper()
	user := &model.User{Username: "u-" + string(role), Role: role}
	user.ID = 1
	token, claims, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	return token, claims
}

func newRouter(cfg *config.Config, sessions SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	whoami := func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			c.String(http.StatusOK, string(claims.Role))
			return
		}
		c.String(http.StatusOK, "guest")
	}

	r.GET("/public", TryAuthMiddleware(cfg, sessions), whoami)
	authed := r.Group("", AuthMiddleware(cfg, sessions))
	authed.GET("/me", whoami)
	authed.GET("/teach", RoleMiddleware(model.Instructor), whoami)
	return r
}

func get(r http.Handler, path string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if decorate != nil {
		decorate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthMiddleware_TokenSources(t *testing.T) {
	cfg := testConfig()
	r := newRouter(cfg, nil)
	token, _ := tokenFor(t, cfg, model.Student)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", bearer("garbage")).Code)

	w := get(r, "/me", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student", w.Body.String())

	w = get(r, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "edunest_session", Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/me?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	other := testConfig()
	other.JWT.Secret = "a-different-secret-0123456789abcd"
	forged, _ := tokenFor(t, other, model.Admin)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", bearer(forged)).Code)
}

func TestAuthMiddleware_RevokedSession(t *testing.T) {
	cfg := testConfig()
	token, claims := tokenFor(t, cfg, model.Student)
	r := newRouter(cfg, revokedSessions{claims.ID: true})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", bearer(token)).Code)

	// 公开接口降级为访客
	w := get(r, "/public", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest", w.Body.String())
}

func TestTryAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newRouter(cfg, nil)
	token, _ := tokenFor(t, cfg, model.Instructor)

	assert.Equal(t, "guest", get(r, "/public", nil).Body.String())
	assert.Equal(t, "guest", get(r, "/public", bearer("garbage")).Body.String())
	assert.Equal(t, "instructor", get(r, "/public", bearer(token)).Body.String())
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newRouter(cfg, nil)

	cases := []struct {
		role model.UserRole
		want int
	}{
		{model.Student, http.StatusForbidden},
		{model.Instructor, http.StatusOK},
		{model.Admin, http.StatusOK},
	}
	for _, c := range cases {
		token, _ := tokenFor(t, cfg, c.role)
		assert.Equal(t, c.want, get(r, "/teach", bearer(token)).Code, string(c.role))
	}
}
