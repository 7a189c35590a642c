package dto

import "time"

// ── 副本模块 DTO ──

// CreateCopyRequest 手动新建单个副本请求
type CreateCopyRequest struct {
	BookID      string `json:"book_id"      binding:"required,uuid"`
	IsReference bool   `json:"is_reference"`
	Location    string `json:"location"`
}

// AddInventoryRequest 批量入库请求
// 按配置比例自动划分馆内阅览本与可借本
type AddInventoryRequest struct {
	BookID   string `json:"book_id"  binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=500"`
}

// UpdateCopyRequest 更新副本请求（管理员维护）
type UpdateCopyRequest struct {
	IsReference *bool   `json:"is_reference"`
	Status      *string `json:"status"`
	Location    *string `json:"location"`
}

// CopyResponse 副本响应
type CopyResponse struct {
	ID              string    `json:"id"`
	BookID          string    `json:"book_id"`
	AccessionNumber int       `json:"accession_number"`
	IsReference     bool      `json:"is_reference"`
	Status          string    `json:"status"`
	Location        string    `json:"location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CopyStatsResponse 副本统计响应
// available 已扣除在途请求（pending / pending_pickup）的软占用
type CopyStatsResponse struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Reference   int64 `json:"reference"`
	Circulating int64 `json:"circulating"`
}
