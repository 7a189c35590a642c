package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/jwt"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tokens, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, tokens)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tokens, err := h.authSvc.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, tokens)
}

// Logout 登出（当前 Token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetMe 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		response.BadRequest(c, 10101, "邮箱已被注册")
	case errors.Is(err, service.ErrUniversityIDTaken):
		response.BadRequest(c, 10102, "学工号已被注册")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 10103, "邮箱或密码错误")
	case errors.Is(err, service.ErrInvalidTokenType):
		response.Unauthorized(c, 10104, "token 类型不匹配")
	case errors.Is(err, jwt.ErrTokenExpired):
		response.Unauthorized(c, 10105, "token 已过期")
	case errors.Is(err, jwt.ErrTokenInvalid):
		response.Unauthorized(c, 10106, "token 无效")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11101, "用户不存在")
	default:
		response.InternalError(c)
	}
}
