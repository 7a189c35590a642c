package dto

// ── 统计模块 DTO ──

// DashboardStatsResponse 管理端总览统计
type DashboardStatsResponse struct {
	Books BookStatsSection `json:"books"`
	Users UserStatsSection `json:"users"`
	Loans LoanStatsSection `json:"loans"`
}

// BookStatsSection 图书统计分组
type BookStatsSection struct {
	TotalBooks     int64            `json:"total_books"`
	TotalCopies    int64            `json:"total_copies"`
	CopiesByStatus map[string]int64 `json:"copies_by_status"`
}

// UserStatsSection 用户统计分组
type UserStatsSection struct {
	TotalUsers  int64            `json:"total_users"`
	UsersByRole map[string]int64 `json:"users_by_role"`
	Blacklisted int64            `json:"blacklisted"`
}

// LoanStatsSection 借阅统计分组
type LoanStatsSection struct {
	ActiveLoans     int64            `json:"active_loans"`
	OverdueLoans    int64            `json:"overdue_loans"`
	PendingRequests int64            `json:"pending_requests"`
	LoansByStatus   map[string]int64 `json:"loans_by_status"`
}

// MostBorrowedBookResponse 热门图书条目
type MostBorrowedBookResponse struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	LoanCount int64  `json:"loan_count"`
}

// MonthlyLoanCountResponse 按月借阅量条目
type MonthlyLoanCountResponse struct {
	Month string `json:"month"` // "2026-01"
	Count int64  `json:"count"`
}

// TopBorrowerResponse 借阅量用户排名条目
type TopBorrowerResponse struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	UniversityID string `json:"university_id"`
	LoanCount    int64  `json:"loan_count"`
}
