package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器（管理员只读视图）
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Dashboard 管理端总览
// GET /api/v1/stats/dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsSvc.GetDashboard(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// MostBorrowed 热门图书排行
// GET /api/v1/stats/most-borrowed?limit=10
func (h *StatsHandler) MostBorrowed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	books, err := h.statsSvc.MostBorrowedBooks(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": books})
}

// LoansByMonth 按月借阅量
// GET /api/v1/stats/loans-by-month?year=2026
func (h *StatsHandler) LoansByMonth(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	counts, err := h.statsSvc.LoansByMonth(c.Request.Context(), year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": counts})
}

// TopBorrowers 借阅量用户排名
// GET /api/v1/stats/top-borrowers?limit=10
func (h *StatsHandler) TopBorrowers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	borrowers, err := h.statsSvc.TopBorrowers(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": borrowers})
}
