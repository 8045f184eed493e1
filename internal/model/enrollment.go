package model

import (
	"time"
)

// Enrollment 用户与课程的报名关系，(user_id, course_id) 唯一
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID    uint       `gorm:"uniqueIndex:idx_enrollment_user_course;index;not null" json:"courseId"`
	Progress    int        `gorm:"default:0" json:"progress"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	EnrolledAt  time.Time  `json:"enrolledAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Course      *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LectureProgress 单个讲座的观看状态，(user_id, lecture_id) 唯一
// swagger:model LectureProgress
type LectureProgress struct {
	BaseModel
	UserID              uint       `gorm:"uniqueIndex:idx_progress_user_lecture;not null" json:"userId"`
	LectureID           uint       `gorm:"uniqueIndex:idx_progress_user_lecture;not null" json:"lectureId"`
	EnrollmentID        uint       `gorm:"index" json:"enrollmentId"`
	Completed           bool       `gorm:"default:false" json:"completed"`
	LastWatchedPosition int        `gorm:"default:0" json:"lastWatchedPosition"` // 秒
	CompletedAt         *time.Time `json:"completedAt"`
}

func (LectureProgress) TableName() string {
	return "lecture_progress"
}
