package model

// swagger:model Section
type Section struct {
	BaseModel
	CourseID    uint      `gorm:"index;not null" json:"courseId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;default:0" json:"order"`
	Lectures    []Lecture `gorm:"foreignKey:SectionID" json:"lectures,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

// Lecture 冗余保存 CourseID，进度聚合时按课程直接计数
// swagger:model Lecture
type Lecture struct {
	BaseModel
	SectionID   uint   `gorm:"index;not null" json:"sectionId"`
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	VideoURL    string `gorm:"size:500" json:"videoUrl,omitempty"`
	Content     string `gorm:"type:text" json:"content,omitempty"`
	Duration    int    `gorm:"default:0" json:"duration"` // 秒
	Order       int    `gorm:"column:sort_order;default:0" json:"order"`
	IsPreview   bool   `gorm:"default:false" json:"isPreview"`
}

func (Lecture) TableName() string {
	return "lectures"
}

// StripContent 未报名用户只能看到目录
func (l *Lecture) StripContent() {
	if l.IsPreview {
		return
	}
	l.VideoURL = ""
	l.Content = ""
}
