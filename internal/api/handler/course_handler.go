package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 全部课程
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	list, err := h.courseSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// ListMyCourses 当前用户相关的课程：学生看小组课程，讲师看自己负责的课程
// GET /api/v1/courses/mine
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var (
		list []dto.CourseResponse
		err  error
	)
	switch actor.Role {
	case model.RoleStudent:
		list, err = h.courseSvc.ListForStudent(c.Request.Context(), actor.UserID)
	case model.RoleLecturer:
		list, err = h.courseSvc.ListForLecturer(c.Request.Context(), actor.UserID)
	default:
		list, err = h.courseSvc.List(c.Request.Context())
	}
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// GetCourse 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// AssignLecturer 指派讲师
// PUT /api/v1/courses/:id/lecturer
func (h *CourseHandler) AssignLecturer(c *gin.Context) {
	var req dto.AssignLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.AssignLecturer(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrLecturerNotFound):
		response.BadRequest(c, 13002, "讲师不存在或未确认")
	case errors.Is(err, service.ErrCourseNotVisible):
		response.Forbidden(c, 13003, "该课程不属于你所在的小组")
	case errors.Is(err, service.ErrCourseNoLecturer):
		response.Conflict(c, 13004, "课程尚未指派讲师")
	case errors.Is(err, service.ErrCourseScheduled):
		response.Conflict(c, 13005, "课程已排定，不能再修改偏好")
	default:
		response.InternalError(c)
	}
}
