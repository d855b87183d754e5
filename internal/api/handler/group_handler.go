package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/response"
)

// GroupHandler 小组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// ListGroups 小组列表
// GET /api/v1/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	list, err := h.groupSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// GetGroup 小组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGroupError(c, err)
		return
	}
	response.OK(c, group)
}

// CreateGroup 创建小组
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleGroupError(c, err)
		return
	}
	response.Created(c, group)
}

// UpdateGroup 更新小组，student_ids 非空时整体替换成员
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.groupSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleGroupError(c, err)
		return
	}
	response.OK(c, group)
}

// DeleteGroup 删除小组
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleGroupError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 14001, "小组不存在")
	case errors.Is(err, service.ErrInvalidStudents):
		response.BadRequest(c, 14002, "成员列表包含非学生用户")
	default:
		response.InternalError(c)
	}
}
