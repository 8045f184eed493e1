package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
)

type TestimonialInput struct {
	Name    string `json:"name" binding:"required,max=100"`
	Role    string `json:"role" binding:"max=100"`
	Content string `json:"content" binding:"required"`
	Avatar  string `json:"avatar" binding:"max=255"`
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

type TestimonialService struct {
	Repo *repository.TestimonialRepository
}

func NewTestimonialService(repo *repository.TestimonialRepository) *TestimonialService {
	return &TestimonialService{Repo: repo}
}

func (s *TestimonialService) List() ([]model.Testimonial, error) {
	return s.Repo.FindAll()
}

func (s *TestimonialService) Create(in TestimonialInput) (*model.Testimonial, error) {
	t := &model.Testimonial{
		Name:    in.Name,
		Role:    in.Role,
		Content: in.Content,
		Avatar:  in.Avatar,
		Rating:  in.Rating,
	}
	if t.Rating == 0 {
		t.Rating = 5
	}
	if err := s.Repo.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}
