package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Name        string  `json:"name"        binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	Duration    int     `json:"duration"    binding:"required,min=1,max=40"`
	LecturerID  *string `json:"lecturer_id" binding:"omitempty,uuid"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Duration    *int    `json:"duration"    binding:"omitempty,min=1,max=40"`
	Scheduled   *bool   `json:"scheduled"`
}

// AssignLecturerRequest 指派讲师请求
type AssignLecturerRequest struct {
	LecturerID string `json:"lecturer_id" binding:"required,uuid"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Duration    int           `json:"duration"`
	Scheduled   bool          `json:"scheduled"`
	Lecturer    *UserResponse `json:"lecturer,omitempty"`
}
