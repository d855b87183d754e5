package dto

// ── 投票统计 DTO ──

// TallyRequest 统计查询参数，两者都为空时统计全部偏好
type TallyRequest struct {
	GroupID  string `form:"group_id"  binding:"omitempty,uuid"`
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}

// TallyResponse 天 × 小时 票数矩阵
type TallyResponse struct {
	GroupID  string   `json:"group_id,omitempty"`
	CourseID string   `json:"course_id,omitempty"`
	Days     []string `json:"days"`
	Hours    []string `json:"hours"`
	Matrix   [][]int  `json:"matrix"`
	Max      int      `json:"max"`
	Voters   int      `json:"voters"`
}

// CatalogResponse 网格目录
type CatalogResponse struct {
	Days  []string `json:"days"`
	Hours []string `json:"hours"`
}
