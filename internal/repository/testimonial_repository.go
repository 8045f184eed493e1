package repository

import (
	"edunest_backend/internal/model"

	"gorm.io/gorm"
)

type TestimonialRepository struct {
	DB *gorm.DB
}

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{DB: db}
}

func (r *TestimonialRepository) Create(t *model.Testimonial) error {
	return r.DB.Create(t).Error
}

func (r *TestimonialRepository) FindAll() ([]model.Testimonial, error) {
	var testimonials []model.Testimonial
	err := r.DB.Order("created_at DESC").Find(&testimonials).Error
	return testimonials, err
}
