package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/service"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// Create 新建课程（管理员）
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// Get 课程详情
// GET /api/v1/courses/:code
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courseSvc.GetCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// List 课程列表
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseSvc.ListCourses(c.Request.Context())
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// Update 更新课程（管理员）
// PUT /api/v1/courses/:code
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.UpdateCourse(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// Delete 删除课程（管理员）
// DELETE /api/v1/courses/:code
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courseSvc.DeleteCourse(c.Request.Context(), c.Param("code")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.NoContent(c)
}

// Enroll 选课（管理员代录）
// POST /api/v1/courses/enrollments
func (h *CourseHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	enrollment, err := h.courseSvc.Enroll(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// ListMyEnrollments 我的选课记录
// GET /api/v1/courses/enrollments/my
func (h *CourseHandler) ListMyEnrollments(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollments, err := h.courseSvc.ListStudentEnrollments(c.Request.Context(), userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": enrollments})
}

// Unenroll 退课（管理员）
// DELETE /api/v1/courses/enrollments/:id
func (h *CourseHandler) Unenroll(c *gin.Context) {
	if err := h.courseSvc.Unenroll(c.Request.Context(), c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.NoContent(c)
}

// LinkBook 课程关联指定书目（管理员）
// POST /api/v1/courses/:code/books
func (h *CourseHandler) LinkBook(c *gin.Context) {
	var req dto.LinkCourseBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	if err := h.courseSvc.LinkBook(c.Request.Context(), c.Param("code"), req.BookID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, nil)
}

// UnlinkBook 解除课程书目关联（管理员）
// DELETE /api/v1/courses/:code/books/:book_id
func (h *CourseHandler) UnlinkBook(c *gin.Context) {
	if err := h.courseSvc.UnlinkBook(c.Request.Context(), c.Param("code"), c.Param("book_id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.NoContent(c)
}

// ListBooks 课程指定书目列表
// GET /api/v1/courses/:code/books
func (h *CourseHandler) ListBooks(c *gin.Context) {
	books, err := h.courseSvc.ListCourseBooks(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": books})
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14101, "课程不存在")
	case errors.Is(err, service.ErrCourseCodeTaken):
		response.BadRequest(c, 14102, "课程代码已存在")
	case errors.Is(err, service.ErrNotStudent):
		response.BadRequest(c, 14103, "仅学生可选课")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.BadRequest(c, 14104, "该学生本学期已选此课程")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 14105, "选课记录不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11101, "用户不存在")
	case errors.Is(err, service.ErrBookNotFound):
		response.NotFound(c, 12101, "书目不存在")
	default:
		response.InternalError(c)
	}
}
