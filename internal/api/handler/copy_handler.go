package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// CopyHandler 副本模块 HTTP 处理器
type CopyHandler struct {
	copySvc service.CopyService
}

// NewCopyHandler 创建 CopyHandler
func NewCopyHandler(copySvc service.CopyService) *CopyHandler {
	return &CopyHandler{copySvc: copySvc}
}

// Create 新建单个副本（管理员）
// POST /api/v1/book-copies
func (h *CopyHandler) Create(c *gin.Context) {
	var req dto.CreateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	copy, err := h.copySvc.CreateCopy(c.Request.Context(), &req)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.Created(c, copy)
}

// AddInventory 批量入库（管理员）
// POST /api/v1/book-copies/inventory
func (h *CopyHandler) AddInventory(c *gin.Context) {
	var req dto.AddInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	copies, err := h.copySvc.AddInventory(c.Request.Context(), &req)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.Created(c, gin.H{"list": copies, "count": len(copies)})
}

// Get 副本详情
// GET /api/v1/book-copies/:id
func (h *CopyHandler) Get(c *gin.Context) {
	id := c.Param("id")

	copy, err := h.copySvc.GetCopy(c.Request.Context(), id)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.OK(c, copy)
}

// GetByAccessionNumber 按登记号查副本（馆员扫码入口）
// GET /api/v1/book-copies/accession/:number
func (h *CopyHandler) GetByAccessionNumber(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		response.BadRequest(c, 12001, "登记号必须为数字")
		return
	}

	copy, err := h.copySvc.GetCopyByAccessionNumber(c.Request.Context(), number)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.OK(c, copy)
}

// List 副本列表
// GET /api/v1/book-copies
func (h *CopyHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	copies, total, err := h.copySvc.ListCopies(c.Request.Context(), &page)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.OKPage(c, copies, total, page.GetPage(), page.GetPageSize())
}

// ListByBook 某书目下的全部副本
// GET /api/v1/book-copies/book/:book_id
func (h *CopyHandler) ListByBook(c *gin.Context) {
	bookID := c.Param("book_id")

	copies, err := h.copySvc.ListCopiesByBook(c.Request.Context(), bookID)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": copies})
}

// Stats 某书目的副本统计（可借量已扣除在途软占用）
// GET /api/v1/book-copies/book/:book_id/stats
func (h *CopyHandler) Stats(c *gin.Context) {
	bookID := c.Param("book_id")

	stats, err := h.copySvc.GetBookCopyStats(c.Request.Context(), bookID)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.OK(c, stats)
}

// Update 更新副本（管理员维护）
// PUT /api/v1/book-copies/:id
func (h *CopyHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	copy, err := h.copySvc.UpdateCopy(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.OK(c, copy)
}

// Delete 删除副本（管理员，无在途借阅时）
// DELETE /api/v1/book-copies/:id
func (h *CopyHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.copySvc.DeleteCopy(c.Request.Context(), id); err != nil {
		h.handleCopyError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *CopyHandler) handleCopyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCopyNotFound):
		response.NotFound(c, 12201, "图书副本不存在")
	case errors.Is(err, service.ErrBookNotFound):
		response.NotFound(c, 12101, "书目不存在")
	case errors.Is(err, service.ErrInvalidCopyStatus):
		response.BadRequest(c, 12202, "无效的副本状态")
	case errors.Is(err, service.ErrCopyInFlight):
		response.Conflict(c, 12203, "副本存在未终结借阅，不可执行此操作")
	case errors.Is(err, service.ErrCopyConflict):
		response.Conflict(c, 12204, "副本信息已被并发修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
