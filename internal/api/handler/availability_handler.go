package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/response"
)

// icsMaxUploadSize ICS 上传大小上限
const icsMaxUploadSize = 5 << 20

// AvailabilityHandler 讲师可用时间 HTTP 处理器
type AvailabilityHandler struct {
	svc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(svc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// ListMine 当前讲师已提交的可用时间
// GET /api/v1/availability
func (h *AvailabilityHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.OK(c, list)
}

// Submit 直接提交可用时间载荷
// POST /api/v1/availability
func (h *AvailabilityHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.svc.Submit(c.Request.Context(), userID, req.Items)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.Created(c, list)
}

// Delete 删除自己的可用时间记录
// DELETE /api/v1/availability  body={"ids": [...]}
func (h *AvailabilityHandler) Delete(c *gin.Context) {
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

// ImportICS 从日历文件导入可用时间
// POST /api/v1/availability/import  multipart/form-data, field="file"
func (h *AvailabilityHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 ICS 文件")
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".ics" {
		response.BadRequest(c, 15004, "仅支持 .ics 文件")
		return
	}
	if fileHeader.Size > icsMaxUploadSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件过大")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer file.Close()

	resp, err := h.svc.ImportICS(c.Request.Context(), userID, file)
	if err != nil {
		handleSelectionError(c, err)
		return
	}
	response.Created(c, resp)
}

// handleSelectionError 可用时间、偏好与选择会话共用的错误映射
func handleSelectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dto.ErrInvalidSelectionItem):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15001, "选择项不合法", err.Error())
	case errors.Is(err, service.ErrSelectionNotFound):
		response.NotFound(c, 15002, "记录不存在或不属于当前用户")
	case errors.Is(err, service.ErrSelectionNotEligible):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15003, "所选时间不在讲师可用时间内", err.Error())
	case errors.Is(err, service.ErrICSInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15004, "ICS 文件解析失败", err.Error())
	case errors.Is(err, service.ErrICSNoEvents):
		response.BadRequest(c, 15005, "日历中没有可导入的事件")
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrCourseNotVisible),
		errors.Is(err, service.ErrCourseNoLecturer),
		errors.Is(err, service.ErrCourseScheduled):
		handleCourseError(c, err)
	default:
		handleSessionError(c, err)
	}
}
