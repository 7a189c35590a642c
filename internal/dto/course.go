package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 新建课程请求
type CreateCourseRequest struct {
	Code           string `json:"code"             binding:"required,max=20"`
	Name           string `json:"name"             binding:"required"`
	Term           string `json:"term"`
	Faculty        string `json:"faculty"`
	CourseLoanDays int    `json:"course_loan_days" binding:"omitempty,min=1"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name           *string `json:"name"`
	Term           *string `json:"term"`
	Faculty        *string `json:"faculty"`
	CourseLoanDays *int    `json:"course_loan_days" binding:"omitempty,min=1"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Term           string `json:"term,omitempty"`
	Faculty        string `json:"faculty,omitempty"`
	CourseLoanDays int    `json:"course_loan_days"`
}

// EnrollRequest 选课请求
type EnrollRequest struct {
	StudentID  string `json:"student_id"  binding:"required,uuid"`
	CourseCode string `json:"course_code" binding:"required"`
	Semester   string `json:"semester"    binding:"required"`
}

// EnrollmentResponse 选课记录响应
type EnrollmentResponse struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	CourseCode string `json:"course_code"`
	Semester   string `json:"semester"`
}

// LinkCourseBookRequest 课程指定书目请求
type LinkCourseBookRequest struct {
	BookID string `json:"book_id" binding:"required,uuid"`
}
