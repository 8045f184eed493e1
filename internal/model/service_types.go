package model

import "time"

// Actor 当前请求的调用者，服务层据此做归属和角色校验
type Actor struct {
	UserID uint
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == Admin
}

func (a Actor) IsAnonymous() bool {
	return a.UserID == 0
}

// CanManage 课程作者本人或管理员
func (a Actor) CanManage(course *Course) bool {
	return a.IsAdmin() || (a.UserID != 0 && course.InstructorID == a.UserID)
}

// CourseFilter 课程列表筛选条件
// swagger:model CourseFilter
type CourseFilter struct {
	Category     string
	Level        string
	Search       string
	InstructorID uint
	Sort         string
	Page         int
	Limit        int
	// 包含未发布课程（作者/管理员自己的列表）
	IncludeDrafts bool
}

// CourseDetail 课程详情：课程 + 讲师 + 章节目录 + 当前用户的报名状态
type CourseDetail struct {
	Course
	Instructor *UserSummary `json:"instructor"`
	Enrollment *Enrollment  `json:"enrollment,omitempty"`
}

// CourseProgress 某用户在某课程中的整体和逐讲进度
type CourseProgress struct {
	Enrollment *Enrollment               `json:"enrollment"`
	Lectures   map[uint]*LectureProgress `json:"lectures"`
}

// ProgressUpdate 一次讲座进度上报
type ProgressUpdate struct {
	Completed           *bool
	LastWatchedPosition *int
}

// ProgressResult 上报后的讲座进度和重新聚合后的报名记录
type ProgressResult struct {
	LectureProgress *LectureProgress `json:"lectureProgress"`
	Enrollment      *Enrollment      `json:"enrollment"`
}

// UploadResult 上传后的文件信息
type UploadResult struct {
	URL          string  `json:"url"`
	Filename     string  `json:"filename"`
	OriginalName string  `json:"originalName"`
	Size         int64   `json:"size"`
	MimeType     string  `json:"mimeType"`
	Duration     float64 `json:"duration,omitempty"`
}

// InstructorProfile 讲师列表/详情
type InstructorProfile struct {
	UserSummary
	Bio           string   `json:"bio"`
	CourseCount   int64    `json:"courseCount"`
	StudentCount  int64    `json:"studentCount"`
	AverageRating float64  `json:"averageRating"`
	Courses       []Course `json:"courses,omitempty"`
}

// InstructorCourseStat 讲师仪表盘中的单门课程统计
type InstructorCourseStat struct {
	CourseID        uint    `json:"courseId"`
	Title           string  `json:"title"`
	Published       bool    `json:"published"`
	EnrollmentCount int64   `json:"enrollmentCount"`
	CompletedCount  int64   `json:"completedCount"`
	AverageProgress float64 `json:"averageProgress"`
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"reviewCount"`
}

// InstructorDashboard 讲师仪表盘
type InstructorDashboard struct {
	TotalCourses   int                    `json:"totalCourses"`
	TotalStudents  int64                  `json:"totalStudents"`
	TotalReviews   int                    `json:"totalReviews"`
	AverageRating  float64                `json:"averageRating"`
	CompletionRate float64                `json:"completionRate"`
	Courses        []InstructorCourseStat `json:"courses"`
}

// TimeRange 日历查询区间 [From, To)
type TimeRange struct {
	From time.Time
	To   time.Time
}
