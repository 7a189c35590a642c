package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// BookHandler 书目模块 HTTP 处理器
type BookHandler struct {
	bookSvc service.BookService
}

// NewBookHandler 创建 BookHandler
func NewBookHandler(bookSvc service.BookService) *BookHandler {
	return &BookHandler{bookSvc: bookSvc}
}

// Create 新建书目（管理员）
// POST /api/v1/books
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	book, err := h.bookSvc.CreateBook(c.Request.Context(), &req)
	if err != nil {
		h.handleBookError(c, err)
		return
	}

	response.Created(c, book)
}

// Get 书目详情（含副本统计）
// GET /api/v1/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	id := c.Param("id")

	book, err := h.bookSvc.GetBook(c.Request.Context(), id)
	if err != nil {
		h.handleBookError(c, err)
		return
	}

	response.OK(c, book)
}

// List 书目列表（支持标题/作者关键字检索）
// GET /api/v1/books
func (h *BookHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}
	keyword := c.Query("keyword")

	books, total, err := h.bookSvc.ListBooks(c.Request.Context(), &page, keyword)
	if err != nil {
		h.handleBookError(c, err)
		return
	}

	response.OKPage(c, books, total, page.GetPage(), page.GetPageSize())
}

// Update 更新书目（管理员）
// PUT /api/v1/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	book, err := h.bookSvc.UpdateBook(c.Request.Context(), id, &req)
	if err != nil {
		h.handleBookError(c, err)
		return
	}

	response.OK(c, book)
}

// Delete 删除书目（管理员，书目下无副本时）
// DELETE /api/v1/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.bookSvc.DeleteBook(c.Request.Context(), id); err != nil {
		h.handleBookError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *BookHandler) handleBookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		response.NotFound(c, 12101, "书目不存在")
	case errors.Is(err, service.ErrBookHasCopies):
		response.Conflict(c, 12102, "书目下仍有副本，不可删除")
	default:
		response.InternalError(c)
	}
}
