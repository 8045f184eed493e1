package model

// swagger:model Review
type Review struct {
	BaseModel
	UserID   uint         `gorm:"uniqueIndex:idx_review_user_course;not null" json:"userId"`
	CourseID uint         `gorm:"uniqueIndex:idx_review_user_course;index;not null" json:"courseId"`
	Rating   int          `gorm:"not null" json:"rating"`
	Comment  string       `gorm:"type:text" json:"comment"`
	User     *User        `gorm:"foreignKey:UserID" json:"-"`
	Author   *UserSummary `gorm:"-" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// swagger:model Testimonial
type Testimonial struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Role    string `gorm:"size:100" json:"role"`
	Content string `gorm:"type:text;not null" json:"content"`
	Avatar  string `gorm:"size:255" json:"avatar"`
	Rating  int    `gorm:"default:5" json:"rating"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}
