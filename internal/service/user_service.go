package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"strings"
)

type ProfileInput struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Title  *string `json:"title" binding:"omitempty,max=120"`
	Bio    *string `json:"bio" binding:"omitempty,max=5000"`
	Avatar *string `json:"avatar" binding:"omitempty,max=255"`
}

// UserService 处理用户资料
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// UpdateProfile 只更新请求中出现的字段
func (s *UserService) UpdateProfile(userID uint, in ProfileInput) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, util.ErrInvalidInput
		}
		user.Name = name
	}
	if in.Title != nil {
		user.Title = strings.TrimSpace(*in.Title)
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
