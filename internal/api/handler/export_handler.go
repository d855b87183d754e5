package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTally 导出偏好热力图
// GET /api/v1/export/votes?group_id=xxx&course_id=yyy
func (h *ExportHandler) ExportTally(c *gin.Context) {
	var req dto.TallyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportTally(c.Request.Context(), &req)
	if err != nil {
		handleTallyError(c, err)
		return
	}

	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

func handleTallyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 14001, "小组不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
