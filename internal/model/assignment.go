package model

import (
	"time"
)

// swagger:model Assignment
type Assignment struct {
	BaseModel
	CourseID      uint       `gorm:"index;not null" json:"courseId"`
	SectionID     *uint      `gorm:"index" json:"sectionId"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	DueDate       *time.Time `gorm:"index" json:"dueDate"`
	MaxScore      int        `gorm:"default:100" json:"maxScore"`
	AttachmentURL string     `gorm:"size:500" json:"attachmentUrl"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// Submission 学生作业提交，每人每份作业一条
// swagger:model Submission
type Submission struct {
	BaseModel
	AssignmentID uint         `gorm:"uniqueIndex:idx_submission_assignment_user;not null" json:"assignmentId"`
	UserID       uint         `gorm:"uniqueIndex:idx_submission_assignment_user;index;not null" json:"userId"`
	Content      string       `gorm:"type:text" json:"content"`
	FileURL      string       `gorm:"size:500" json:"fileUrl"`
	Score        *int         `json:"score"`
	Feedback     string       `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time    `json:"submittedAt"`
	GradedAt     *time.Time   `json:"gradedAt"`
	User         *User        `gorm:"foreignKey:UserID" json:"-"`
	Student      *UserSummary `gorm:"-" json:"student,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) Graded() bool {
	return s.GradedAt != nil
}
