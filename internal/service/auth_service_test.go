package service

import (
	"context"
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]uint
}

func (m *memorySessions) Save(_ context.Context, id string, userID uint, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = userID
	return nil
}

func (m *memorySessions) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok, nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(RegisterInput{Name: "Ada", Username: "ada", Email: " Ada@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, model.Student, user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	_, err = env.auth.Register(RegisterInput{Name: "Ada 2", Username: "ada2", Email: "ada@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	_, err = env.auth.Register(RegisterInput{Name: "Ada 3", Username: "ada", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	admin, err := env.auth.Register(RegisterInput{Name: "Eve", Username: "eve", Email: "eve@example.com", Password: "secret123", Role: model.Admin})
	require.NoError(t, err)
	assert.Equal(t, model.Student, admin.Role, "admin role cannot be self-assigned")

	teacher, err := env.auth.Register(RegisterInput{Name: "Tom", Username: "tom", Email: "tom@example.com", Password: "secret123", Role: model.Instructor})
	require.NoError(t, err)
	assert.Equal(t, model.Instructor, teacher.Role)
}

// 预检查通过后、插入前另一个请求抢先注册了同一用户名
func TestRegisterRaceReportsConflictingColumn(t *testing.T) {
	env := newTestEnv(t)

	fired := false
	err := env.db.Callback().Create().Before("gorm:begin_transaction").Register("test:rival_signup", func(db *gorm.DB) {
		if fired {
			return
		}
		if _, ok := db.Statement.Dest.(*model.User); !ok {
			return
		}
		fired = true
		rival := &model.User{Name: "Rival", Username: "ada", Email: "rival@example.com", Password: "x", Role: model.Student}
		if err := db.Session(&gorm.Session{NewDB: true}).Create(rival).Error; err != nil {
			db.AddError(err)
		}
	})
	require.NoError(t, err)

	_, err = env.auth.Register(RegisterInput{Name: "Ada", Username: "ada", Email: "ada@example.com", Password: "secret123"})
	require.True(t, fired)
	assert.ErrorIs(t, err, util.ErrUsernameTaken)
}

func TestLoginAndSessionRevocation(t *testing.T) {
	env := newTestEnv(t)
	store := &memorySessions{sessions: map[string]uint{}}
	auth := NewAuthService(repository.NewUserRepository(env.db), store, env.cfg)

	_, err := auth.Register(RegisterInput{Name: "Ada", Username: "ada", Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), LoginInput{Login: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = auth.Login(context.Background(), LoginInput{Login: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	res, err := auth.Login(context.Background(), LoginInput{Login: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	claims, err := util.ParseJWT(res.Token, env.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	require.NoError(t, auth.ValidateSession(context.Background(), claims))

	require.NoError(t, auth.Logout(context.Background(), claims))
	assert.ErrorIs(t, auth.ValidateSession(context.Background(), claims), util.ErrSessionRevoked)
}

func TestStatelessSessionsWithoutStore(t *testing.T) {
	env := newTestEnv(t)
	claims := &util.Claims{UserID: 1}
	assert.NoError(t, env.auth.ValidateSession(context.Background(), claims))
	assert.NoError(t, env.auth.Logout(context.Background(), claims))
}
