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

// importMaxFileSize 导入文件大小上限
const importMaxFileSize = 5 << 20

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表
// GET /api/v1/users?role=student&page=1&page_size=20
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreatePlanner 创建排课员账号，临时密码只在响应中出现一次
// POST /api/v1/users/planners
func (h *UserHandler) CreatePlanner(c *gin.Context) {
	var req dto.CreatePlannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.CreatePlanner(c.Request.Context(), &req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.Created(c, result)
}

// ImportStudents Excel 批量导入学生
// POST /api/v1/users/import  multipart/form-data, field="file"
func (h *UserHandler) ImportStudents(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		response.BadRequest(c, 12003, "仅支持 .xlsx 文件")
		return
	}
	if fileHeader.Size > importMaxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件过大")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer file.Close()

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		handleUserError(c, err)
		return
	}

	result, err := h.userSvc.ImportStudents(c.Request.Context(), rows)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusInternalServerError, 12007, "导入失败", err.Error())
		return
	}

	response.OK(c, result)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12002, "不能删除自己")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11002, "邮箱已被注册")
	case errors.Is(err, service.ErrImportBadFile):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12003, "无法解析Excel文件", err.Error())
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 12004, err.Error())
	default:
		response.InternalError(c)
	}
}
