package dto

import "github.com/Oskru/study-smart/internal/timegrid"

// ── 讲师可用时间 DTO ──

// SubmitAvailabilityRequest 提交可用时间
type SubmitAvailabilityRequest struct {
	Items []SelectionItem `json:"items" binding:"required,min=1,dive"`
}

// AvailabilityResponse 可用时间记录
type AvailabilityResponse struct {
	ID         string               `json:"id"`
	LecturerID string               `json:"lecturer_id"`
	DayID      int                  `json:"dayId"`
	DayName    string               `json:"dayName"`
	Times      []string             `json:"times"`
	TimeRanges []timegrid.TimeRange `json:"timeRanges"`
}

// ImportICSResponse ICS 导入结果
type ImportICSResponse struct {
	Events  int                    `json:"events"`
	Skipped int                    `json:"skipped"`
	Items   []AvailabilityResponse `json:"items"`
}
