package dto

import "time"

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID               string    `json:"id"`
	UniversityID     string    `json:"university_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Faculty          string    `json:"faculty,omitempty"`
	AcademicYear     *int      `json:"academic_year,omitempty"`
	InfractionsCount int       `json:"infractions_count"`
	IsBlacklisted    bool      `json:"is_blacklisted"`
	BlacklistNote    *string   `json:"blacklist_note,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// UpdateUserRequest 管理员更新用户请求
type UpdateUserRequest struct {
	FullName         *string `json:"full_name"     binding:"omitempty,min=2,max=100"`
	Email            *string `json:"email"         binding:"omitempty,email"`
	Role             *string `json:"role"`
	Faculty          *string `json:"faculty"`
	AcademicYear     *int    `json:"academic_year"`
	IsBlacklisted    *bool   `json:"is_blacklisted"`
	BlacklistNote    *string `json:"blacklist_note"`
	InfractionsCount *int    `json:"infractions_count" binding:"omitempty,min=0"`
}

// UserStatsResponse 单用户借阅统计（个人首页）
type UserStatsResponse struct {
	ActiveLoans     int64 `json:"active_loans"`
	TotalLoans      int64 `json:"total_loans"`
	OverdueLoans    int64 `json:"overdue_loans"`
	PendingRequests int64 `json:"pending_requests"`
	Infractions     int   `json:"infractions"`
}

// UserDashboardResponse 个人首页响应
type UserDashboardResponse struct {
	User  UserResponse      `json:"user"`
	Stats UserStatsResponse `json:"stats"`
}
