package repository

import (
	"edunest_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CalendarRepository struct {
	DB *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{DB: db}
}

func (r *CalendarRepository) Create(event *model.CalendarEvent) error {
	return r.DB.Create(event).Error
}

func (r *CalendarRepository) Update(event *model.CalendarEvent) error {
	return r.DB.Save(event).Error
}

func (r *CalendarRepository) Delete(id uint) error {
	return r.DB.Delete(&model.CalendarEvent{}, id).Error
}

func (r *CalendarRepository) FindByID(id uint) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	err := r.DB.First(&event, id).Error
	return &event, err
}

// FindOverlapping 与 [from, to) 有交集的个人事件
func (r *CalendarRepository) FindOverlapping(userID uint, from, to time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := r.DB.
		Where("user_id = ? AND start_time < ? AND end_time >= ?", userID, to, from).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}
