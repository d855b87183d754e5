package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/response"
)

// PreferenceHandler 学生偏好 HTTP 处理器
type PreferenceHandler struct {
	svc service.PreferenceService
}

// NewPreferenceHandler 创建 PreferenceHandler
func NewPreferenceHandler(svc service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// ListMine 当前学生的偏好，可按课程过滤
// GET /api/v1/preferences?course_id=xxx
func (h *PreferenceHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PreferenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.svc.ListMine(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, list)
}

// Submit 提交某课程的偏好时间
// POST /api/v1/preferences
func (h *PreferenceHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.svc.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.Created(c, list)
}

// Delete 删除自己的偏好记录
// DELETE /api/v1/preferences  body={"ids": [...]}
func (h *PreferenceHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DeleteSelectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	n, err := h.svc.Delete(c.Request.Context(), userID, req.IDs)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": n})
}

// Eligibility 课程讲师的可用时间
// GET /api/v1/courses/:id/eligibility
func (h *PreferenceHandler) Eligibility(c *gin.Context) {
	resp, err := h.svc.Eligibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, resp)
}
