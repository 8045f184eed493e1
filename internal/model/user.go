package model

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Username string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student';index" json:"role"`
	Avatar   string   `gorm:"size:255" json:"avatar"`
	Title    string   `gorm:"size:120" json:"title"`
	Bio      string   `gorm:"type:text" json:"bio"`
}

func (User) TableName() string {
	return "users"
}

// UserSummary 嵌入到课程、评论、消息中的精简用户信息
type UserSummary struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Avatar   string   `json:"avatar"`
	Title    string   `json:"title,omitempty"`
	Role     UserRole `json:"role,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Avatar:   u.Avatar,
		Title:    u.Title,
		Role:     u.Role,
	}
}
