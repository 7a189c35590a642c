package dto

import "time"

// ── 借阅模块 DTO ──

// CreateLoanRequest 发起借阅请求
type CreateLoanRequest struct {
	CopyID string `json:"copy_id" binding:"required,uuid"`
}

// RejectLoanRequest 驳回借阅请求
type RejectLoanRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ReturnLoanRequest 归还请求
// IncrementInfractions 由管理员裁量：逾期归还时是否记违规
type ReturnLoanRequest struct {
	IncrementInfractions bool `json:"increment_infractions"`
}

// SearchLoansRequest 借阅检索请求
type SearchLoansRequest struct {
	PaginationRequest
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	Status   string `form:"status"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date"   binding:"omitempty,datetime=2006-01-02"`
}

// LoanResponse 借阅记录响应
// IsOverdue 为派生字段：active 且已过 due_date
type LoanResponse struct {
	ID           string     `json:"id"`
	CopyID       string     `json:"copy_id"`
	UserID       string     `json:"user_id"`
	Status       string     `json:"status"`
	RequestDate  time.Time  `json:"request_date"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	IsOverdue    bool       `json:"is_overdue"`
}

// LoanWithBookResponse 借阅记录 + 书目信息响应
type LoanWithBookResponse struct {
	LoanResponse
	AccessionNumber int    `json:"accession_number"`
	BookID          string `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
}

// DueDatePreviewResponse 应还日期试算响应
type DueDatePreviewResponse struct {
	CopyID            string    `json:"copy_id"`
	UserID            string    `json:"user_id"`
	Role              string    `json:"role"`
	LoanDays          int       `json:"loan_days"`
	CalculationMethod string    `json:"calculation_method"` // role_policy | course_override
	CourseCode        string    `json:"course_code,omitempty"`
	DueDate           time.Time `json:"due_date"`
}

// ── 借阅策略 DTO ──

// PolicyResponse 借阅策略响应
type PolicyResponse struct {
	Role     string `json:"role"`
	MaxBooks int    `json:"max_books"`
	LoanDays int    `json:"loan_days"`
}

// UpdatePolicyRequest 更新借阅策略请求
type UpdatePolicyRequest struct {
	MaxBooks *int `json:"max_books" binding:"omitempty,min=1"`
	LoanDays *int `json:"loan_days" binding:"omitempty,min=1"`
}
