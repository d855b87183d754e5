package dto

import "github.com/Oskru/study-smart/internal/timegrid"

// ── 学生偏好 DTO ──

// SubmitPreferenceRequest 提交某课程的偏好
type SubmitPreferenceRequest struct {
	CourseID string          `json:"course_id" binding:"required,uuid"`
	Items    []SelectionItem `json:"items"     binding:"required,min=1,dive"`
}

// PreferenceListRequest 偏好查询参数
type PreferenceListRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}

// PreferenceResponse 偏好记录
type PreferenceResponse struct {
	ID         string               `json:"id"`
	CourseID   string               `json:"course_id"`
	DayID      int                  `json:"dayId"`
	DayName    string               `json:"dayName"`
	Times      []string             `json:"times"`
	TimeRanges []timegrid.TimeRange `json:"timeRanges"`
}

// EligibilityResponse 某课程可选时间（讲师可用时间合并视图）
type EligibilityResponse struct {
	CourseID      string                      `json:"course_id"`
	LecturerID    string                      `json:"lecturer_id,omitempty"`
	MinSelections int                         `json:"min_selections"`
	Entries       []timegrid.EligibilityEntry `json:"entries"`
}
