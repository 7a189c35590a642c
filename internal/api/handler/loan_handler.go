package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// LoanHandler 借阅模块 HTTP 处理器
type LoanHandler struct {
	loanSvc service.LoanService
}

// NewLoanHandler 创建 LoanHandler
func NewLoanHandler(loanSvc service.LoanService) *LoanHandler {
	return &LoanHandler{loanSvc: loanSvc}
}

// Request 发起借阅申请（借阅人本人）
// POST /api/v1/loans/request
func (h *LoanHandler) Request(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	loan, err := h.loanSvc.RequestLoan(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.Created(c, loan)
}

// Approve 审批通过（管理员）
// POST /api/v1/loans/:id/approve
func (h *LoanHandler) Approve(c *gin.Context) {
	id := c.Param("id")

	loan, err := h.loanSvc.ApproveLoan(c.Request.Context(), id)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, loan)
}

// Reject 驳回申请（管理员）
// POST /api/v1/loans/:id/reject
func (h *LoanHandler) Reject(c *gin.Context) {
	id := c.Param("id")

	// 驳回理由可省略
	var req dto.RejectLoanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 13001, "参数校验失败")
			return
		}
	}

	loan, err := h.loanSvc.RejectLoan(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, loan)
}

// Cancel 取消申请（借阅人本人，仅 pending 阶段）
// POST /api/v1/loans/:id/cancel
func (h *LoanHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	loan, err := h.loanSvc.CancelLoan(c.Request.Context(), id, userID)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, loan)
}

// Checkout 确认取书（管理员）
// POST /api/v1/loans/:id/checkout
func (h *LoanHandler) Checkout(c *gin.Context) {
	id := c.Param("id")

	loan, err := h.loanSvc.ConfirmPickup(c.Request.Context(), id)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, loan)
}

// Return 归还（管理员）
// POST /api/v1/loans/:id/return
func (h *LoanHandler) Return(c *gin.Context) {
	id := c.Param("id")

	// 归还请求体可为空
	var req dto.ReturnLoanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 13001, "参数校验失败")
			return
		}
	}

	loan, err := h.loanSvc.ReturnLoan(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, loan)
}

// Delete 删除历史借阅记录（管理员）
// DELETE /api/v1/loans/:id
func (h *LoanHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.loanSvc.DeleteLoan(c.Request.Context(), id); err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.NoContent(c)
}

// Get 借阅详情
// GET /api/v1/loans/:id
func (h *LoanHandler) Get(c *gin.Context) {
	id := c.Param("id")

	loan, err := h.loanSvc.GetLoan(c.Request.Context(), id)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, loan)
}

// List 借阅列表（管理员）
// GET /api/v1/loans
func (h *LoanHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	loans, total, err := h.loanSvc.ListLoans(c.Request.Context(), &page)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OKPage(c, loans, total, page.GetPage(), page.GetPageSize())
}

// ListByStatus 按状态查借阅（管理员）
// GET /api/v1/loans/status/:status
func (h *LoanHandler) ListByStatus(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	loans, err := h.loanSvc.ListLoansByStatus(c.Request.Context(), c.Param("status"), &page)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, gin.H{"list": loans})
}

// ListMy 我的借阅
// GET /api/v1/loans/my
func (h *LoanHandler) ListMy(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	loans, err := h.loanSvc.ListUserLoans(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, gin.H{"list": loans})
}

// ListOverdue 逾期借阅视图（管理员，按查询时刻派生）
// GET /api/v1/loans/overdue
func (h *LoanHandler) ListOverdue(c *gin.Context) {
	loans, err := h.loanSvc.ListOverdueLoans(c.Request.Context())
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, gin.H{"list": loans})
}

// Search 借阅检索（管理员）
// GET /api/v1/loans/search
func (h *LoanHandler) Search(c *gin.Context) {
	var req dto.SearchLoansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	loans, total, err := h.loanSvc.SearchLoans(c.Request.Context(), &req)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OKPage(c, loans, total, req.GetPage(), req.GetPageSize())
}

// PreviewDueDate 应还日期试算（借阅人本人）
// GET /api/v1/loans/due-date-preview?copy_id=xxx
func (h *LoanHandler) PreviewDueDate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	copyID := c.Query("copy_id")
	if copyID == "" {
		response.BadRequest(c, 13001, "copy_id不能为空")
		return
	}

	preview, err := h.loanSvc.PreviewDueDate(c.Request.Context(), userID, copyID)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, preview)
}

// ListPolicies 借阅策略列表
// GET /api/v1/loans/policies
func (h *LoanHandler) ListPolicies(c *gin.Context) {
	policies, err := h.loanSvc.ListPolicies(c.Request.Context())
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, gin.H{"list": policies})
}

// GetPolicy 单个角色的借阅策略
// GET /api/v1/loans/policies/:role
func (h *LoanHandler) GetPolicy(c *gin.Context) {
	policy, err := h.loanSvc.GetPolicy(c.Request.Context(), c.Param("role"))
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, policy)
}

// UpdatePolicy 更新借阅策略（管理员）
// PUT /api/v1/loans/policies/:role
func (h *LoanHandler) UpdatePolicy(c *gin.Context) {
	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	policy, err := h.loanSvc.UpdatePolicy(c.Request.Context(), c.Param("role"), &req)
	if err != nil {
		h.handleLoanError(c, err)
		return
	}

	response.OK(c, policy)
}

func (h *LoanHandler) handleLoanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLoanNotFound):
		response.NotFound(c, 13101, "借阅记录不存在")
	case errors.Is(err, service.ErrCopyNotFound):
		response.NotFound(c, 12201, "图书副本不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11101, "用户不存在")
	case errors.Is(err, service.ErrInvalidLoanStatus):
		response.BadRequest(c, 13102, "无效的借阅状态")
	case errors.Is(err, service.ErrUserBlacklisted):
		response.Forbidden(c, 13103, "用户已被列入黑名单，不可发起借阅")
	case errors.Is(err, service.ErrNotLoanOwner):
		response.Forbidden(c, 13104, "只能取消本人的借阅申请")
	case errors.Is(err, service.ErrCopyReferenceOnly):
		response.BadRequest(c, 13105, "馆内阅览本不可外借")
	case errors.Is(err, service.ErrCopyNotAvailable):
		response.BadRequest(c, 13106, "图书副本当前不可借")
	case errors.Is(err, service.ErrPolicyLimitReached):
		response.Conflict(c, 13107, "已达到该角色的最大借阅数量")
	case errors.Is(err, service.ErrInvalidLoanState):
		response.Conflict(c, 13108, "借阅状态不允许此操作")
	case errors.Is(err, service.ErrLoanConflict):
		response.Conflict(c, 13109, "副本已被并发操作占用，请重试")
	case errors.Is(err, service.ErrDuplicateLoan):
		response.Conflict(c, 13111, "已存在对该副本的未完结借阅")
	case errors.Is(err, service.ErrLoanNotTerminal):
		response.Conflict(c, 13112, "仅可删除已完结的借阅记录")
	case errors.Is(err, service.ErrPolicyNotFound):
		// 策略缺失属于服务端配置错误
		response.Error(c, http.StatusInternalServerError, 13110, "角色借阅策略缺失")
	default:
		response.InternalError(c)
	}
}
