package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 用户列表（管理员）
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.ListUsers(c.Request.Context(), &page)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, users, total, page.GetPage(), page.GetPageSize())
}

// Get 用户详情（管理员）
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")

	user, err := h.userSvc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// Update 更新用户（管理员，含黑名单与角色变更）
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	user, err := h.userSvc.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// Dashboard 个人首页（当前用户的借阅概况）
// GET /api/v1/users/me/dashboard
func (h *UserHandler) Dashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.userSvc.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, dashboard)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11101, "用户不存在")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 11102, "无效的用户角色")
	case errors.Is(err, service.ErrUserConflict):
		response.Conflict(c, 11103, "用户信息已被并发修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
