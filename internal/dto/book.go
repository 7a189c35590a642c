package dto

import "time"

// ── 图书模块 DTO ──

// CreateBookRequest 新建书目请求
type CreateBookRequest struct {
	ISBN            string `json:"isbn"             binding:"required"`
	CallNumber      string `json:"call_number"`
	Title           string `json:"title"            binding:"required"`
	Author          string `json:"author"           binding:"required"`
	Faculty         string `json:"faculty"`
	Publisher       string `json:"publisher"`
	PublicationYear *int   `json:"publication_year" binding:"omitempty,min=1000,max=2100"`
}

// UpdateBookRequest 更新书目请求
type UpdateBookRequest struct {
	ISBN            *string `json:"isbn"`
	CallNumber      *string `json:"call_number"`
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Faculty         *string `json:"faculty"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year" binding:"omitempty,min=1000,max=2100"`
}

// BookResponse 书目响应
type BookResponse struct {
	ID              string    `json:"id"`
	ISBN            string    `json:"isbn"`
	CallNumber      string    `json:"call_number,omitempty"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Faculty         string    `json:"faculty,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookWithStatsResponse 书目 + 副本统计响应
type BookWithStatsResponse struct {
	BookResponse
	CopyStats CopyStatsResponse `json:"copy_stats"`
}
