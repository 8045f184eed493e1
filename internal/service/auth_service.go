package service

import (
	"context"
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore 服务端会话登记，SessionRepository（Redis）实现；为 nil 时令牌是无状态的
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type RegisterInput struct {
	Name     string         `json:"name" binding:"required,max=100"`
	Username string         `json:"username" binding:"required,min=3,max=50"`
	Email    string         `json:"email" binding:"required,email,max=100"`
	Password string         `json:"password" binding:"required,min=6,max=72"`
	Role     model.UserRole `json:"role" binding:"omitempty,oneof=student instructor"`
}

type LoginInput struct {
	// 用户名或邮箱
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Sessions SessionStore
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

// registrationConflict 邮箱优先，其次用户名；都可用时返回 nil
func (s *AuthService) registrationConflict(email, username string) error {
	if _, err := s.UserRepo.FindByEmail(email); err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := s.UserRepo.FindByUsername(username); err == nil {
		return util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) Register(in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if err := s.registrationConflict(email, username); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 管理员不能自行注册
	role := in.Role
	if role != model.Instructor {
		role = model.Student
	}

	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if isDuplicate(err) {
			// 并发注册撞上唯一索引，重新查询是哪一列冲突
			if conflict := s.registrationConflict(email, username); conflict != nil {
				return nil, conflict
			}
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	logger.Log.Info("User registered", zap.Uint("userID", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	login := strings.TrimSpace(in.Login)
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}

	user, err := s.UserRepo.FindByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, claims, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, claims.ID, user.ID, s.Cfg.JWT.ExpireTime); err != nil {
			return nil, err
		}
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// Logout 撤销会话；无状态模式下只需要客户端丢弃令牌
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Sessions == nil || claims == nil {
		return nil
	}
	return s.Sessions.Delete(ctx, claims.ID)
}

// ValidateSession 令牌签名有效之外，还要求会话未被撤销
func (s *AuthService) ValidateSession(ctx context.Context, claims *util.Claims) error {
	if s.Sessions == nil {
		return nil
	}
	ok, err := s.Sessions.Exists(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrSessionRevoked
	}
	return nil
}

func (s *AuthService) CurrentUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	return user, nil
}
