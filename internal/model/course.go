package model

// Course 课程表 — 对应 courses
type Course struct {
	Code           string `gorm:"type:varchar(20);primaryKey"    json:"code"`
	Name           string `gorm:"type:varchar(255);not null"     json:"name"`
	Term           string `gorm:"type:varchar(20)"               json:"term,omitempty"`
	Faculty        string `gorm:"type:varchar(100)"              json:"faculty,omitempty"`
	CourseLoanDays int    `gorm:"not null;default:90"            json:"course_loan_days"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Enrollment 选课记录表 — 对应 enrollments
type Enrollment struct {
	EnrollmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseCode   string `gorm:"type:varchar(20);not null"                      json:"course_code"`
	Semester     string `gorm:"type:varchar(20);not null"                      json:"semester"`

	// 关联
	Course *Course `gorm:"foreignKey:CourseCode;references:Code" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// CourseBook 课程指定书目关联表 — 对应 course_books
type CourseBook struct {
	CourseCode string `gorm:"type:varchar(20);primaryKey" json:"course_code"`
	BookID     string `gorm:"type:uuid;primaryKey"        json:"book_id"`
}

// TableName 指定表名
func (CourseBook) TableName() string { return "course_books" }
