package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin planner lecturer student"`
}

// CreatePlannerRequest 管理员创建排课员
type CreatePlannerRequest struct {
	Name  string `json:"name"  binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// CreateUserResponse 创建用户响应（临时密码仅返回一次）
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// ImportedStudent 导入成功的学生及其临时密码
type ImportedStudent struct {
	Row          int    `json:"row"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

// ImportUserError 导入失败的行
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportUserResponse 批量导入结果
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Created []ImportedStudent `json:"created"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}
