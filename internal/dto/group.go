package dto

// ── 小组模块 DTO ──

// CreateGroupRequest 创建小组请求
type CreateGroupRequest struct {
	Name       string   `json:"name"        binding:"required,min=1,max=100"`
	StudentIDs []string `json:"student_ids" binding:"omitempty,dive,uuid"`
	CourseIDs  []string `json:"course_ids"  binding:"omitempty,dive,uuid"`
}

// UpdateGroupRequest 更新小组请求
// StudentIDs 非 nil 时整体替换成员列表
type UpdateGroupRequest struct {
	Name       *string  `json:"name"        binding:"omitempty,min=1,max=100"`
	StudentIDs []string `json:"student_ids" binding:"omitempty,dive,uuid"`
	CourseIDs  []string `json:"course_ids"  binding:"omitempty,dive,uuid"`
}

// GroupResponse 小组响应
type GroupResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	StudentIDs []string `json:"student_ids"`
	CourseIDs  []string `json:"course_ids"`
}
