package model

import (
	"time"
)

type EventType string

const (
	EventPersonal   EventType = "personal"
	EventLecture    EventType = "lecture"
	EventAssignment EventType = "assignment"
	EventDeadline   EventType = "deadline"
)

// swagger:model CalendarEvent
type CalendarEvent struct {
	BaseModel
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `gorm:"index;not null" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	Type        EventType `gorm:"size:20;default:'personal'" json:"type"`
	CourseID    *uint     `gorm:"index" json:"courseId"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// CalendarEntry 日历视图中的条目，作业截止日期是只读的派生条目
type CalendarEntry struct {
	ID           uint      `json:"id"`
	Source       string    `json:"source"` // event | assignment
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Type         EventType `json:"type"`
	CourseID     *uint     `json:"courseId,omitempty"`
	AssignmentID *uint     `json:"assignmentId,omitempty"`
	ReadOnly     bool      `json:"readOnly"`
}
