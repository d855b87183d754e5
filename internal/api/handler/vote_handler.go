package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/internal/timegrid"
	"github.com/Oskru/study-smart/pkg/response"
)

// VoteHandler 偏好投票统计 HTTP 处理器
type VoteHandler struct {
	svc service.VoteService
}

// NewVoteHandler 创建 VoteHandler
func NewVoteHandler(svc service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Tally 热力矩阵
// GET /api/v1/votes?group_id=xxx&course_id=yyy
func (h *VoteHandler) Tally(c *gin.Context) {
	var req dto.TallyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.svc.Tally(c.Request.Context(), &req)
	if err != nil {
		handleTallyError(c, err)
		return
	}
	response.OK(c, resp)
}

// CatalogHandler 网格目录
type CatalogHandler struct {
	catalog *timegrid.Catalog
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalog *timegrid.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Get 返回星期与小时标签
// GET /api/v1/catalog
func (h *CatalogHandler) Get(c *gin.Context) {
	response.OK(c, dto.CatalogResponse{
		Days:  h.catalog.Days(),
		Hours: h.catalog.Hours(),
	})
}
