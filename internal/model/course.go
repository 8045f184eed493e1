package model

import (
	"gorm.io/datatypes"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
	LevelAll          CourseLevel = "all"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Subtitle         string                      `gorm:"size:255" json:"subtitle"`
	Description      string                      `gorm:"type:text" json:"description"`
	Category         string                      `gorm:"size:100;index" json:"category"`
	Level            CourseLevel                 `gorm:"size:20;default:'all'" json:"level"`
	Language         string                      `gorm:"size:20;default:'en'" json:"language"`
	Price            float64                     `gorm:"default:0" json:"price"`
	Thumbnail        string                      `gorm:"size:255" json:"thumbnail"`
	InstructorID     uint                        `gorm:"index;not null" json:"instructorId"`
	Instructor       *User                       `gorm:"foreignKey:InstructorID" json:"-"`
	TotalLectures    int                         `gorm:"default:0" json:"totalLectures"`
	TotalDuration    int                         `gorm:"default:0" json:"totalDuration"` // 秒
	Rating           float64                     `gorm:"default:0" json:"rating"`
	ReviewCount      int                         `gorm:"default:0" json:"reviewCount"`
	EnrollmentCount  int                         `gorm:"default:0" json:"enrollmentCount"`
	Published        bool                        `gorm:"index" json:"published"`
	LearningOutcomes datatypes.JSONSlice[string] `json:"learningOutcomes"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	Sections         []Section                   `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CategoryCount 分类及其课程数
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
