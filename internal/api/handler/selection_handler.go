package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	pkgerrors "github.com/Oskru/study-smart/pkg/errors"
	"github.com/Oskru/study-smart/pkg/response"
)

// SelectionHandler 网格选择会话 HTTP 处理器
type SelectionHandler struct {
	svc service.SelectionService
}

// NewSelectionHandler 创建 SelectionHandler
func NewSelectionHandler(svc service.SelectionService) *SelectionHandler {
	return &SelectionHandler{svc: svc}
}

// Open 打开会话
// POST /api/v1/sessions
func (h *SelectionHandler) Open(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.svc.Open(c.Request.Context(), actor, &req)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.Created(c, sess)
}

// Get 会话当前视图
// GET /api/v1/sessions/:id
func (h *SelectionHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, sess)
}

// Toggle 点击格子
// POST /api/v1/sessions/:id/toggle
func (h *SelectionHandler) Toggle(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.svc.Toggle(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, resp)
}

// SwitchMode 切换 add / delete 模式
// PUT /api/v1/sessions/:id/mode
func (h *SelectionHandler) SwitchMode(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SwitchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.svc.SwitchMode(c.Request.Context(), actor, c.Param("id"), req.Mode)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, sess)
}

// Submit 提交会话当前选择
// POST /api/v1/sessions/:id/submit
func (h *SelectionHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, resp)
}

// Close 关闭会话
// DELETE /api/v1/sessions/:id
func (h *SelectionHandler) Close(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.svc.Close(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrSessionNotFound):
		response.NotFound(c, 16001, "选择会话不存在或已过期")
	case errors.Is(err, pkgerrors.ErrSessionConflict):
		response.Conflict(c, 16007, "选择会话正被其他请求修改，请重试")
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, service.ErrCourseRequired):
		response.BadRequest(c, 16002, "偏好会话必须指定课程")
	case errors.Is(err, service.ErrEmptySelection):
		response.BadRequest(c, 16003, "当前没有选择任何时间")
	case errors.Is(err, service.ErrNothingToDelete):
		response.BadRequest(c, 16004, "当前没有待删除的记录")
	case errors.Is(err, service.ErrInvalidCell):
		response.BadRequest(c, 16005, "格子不在目录中")
	case errors.Is(err, service.ErrWrongSessionMode):
		response.BadRequest(c, 16006, "当前模式不支持该操作")
	default:
		response.InternalError(c)
	}
}
