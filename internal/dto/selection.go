package dto

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Oskru/study-smart/internal/timegrid"
)

// ── 选择载荷 DTO ──

var ErrInvalidSelectionItem = errors.New("选择项不合法")

// SelectionItem 单日选择载荷，与网格派生的 PayloadItem 同形
type SelectionItem struct {
	DayID      int                  `json:"dayId"`
	DayName    string               `json:"dayName"    binding:"required"`
	Times      []string             `json:"times"      binding:"required,min=1"`
	TimeRanges []timegrid.TimeRange `json:"timeRanges"`
}

// Validate 在边界校验载荷：
// 星期与小时必须在目录内，times 按目录顺序严格递增，
// timeRanges 若提供必须等于 compress(times)，缺省时补全；DayID 缺省时按目录补全。
func (s *SelectionItem) Validate(c *timegrid.Catalog) error {
	if !c.HasDay(s.DayName) {
		return fmt.Errorf("%w: 未知星期 %q", ErrInvalidSelectionItem, s.DayName)
	}
	if len(s.Times) == 0 {
		return fmt.Errorf("%w: %s 未选择任何时间", ErrInvalidSelectionItem, s.DayName)
	}
	prev := -1
	for _, t := range s.Times {
		pos := c.HourPos(t)
		if pos < 0 {
			return fmt.Errorf("%w: 未知时间 %q", ErrInvalidSelectionItem, t)
		}
		if pos <= prev {
			return fmt.Errorf("%w: times 必须按目录顺序排列且不重复", ErrInvalidSelectionItem)
		}
		prev = pos
	}

	want := c.Compress(s.Times)
	if len(s.TimeRanges) == 0 {
		s.TimeRanges = want
	} else if !reflect.DeepEqual(s.TimeRanges, want) {
		return fmt.Errorf("%w: timeRanges 与 times 不一致", ErrInvalidSelectionItem)
	}

	if s.DayID == 0 {
		s.DayID = c.DayID(s.DayName)
	}
	return nil
}

// ValidateItems 校验一组载荷，同一星期不得出现两次
func ValidateItems(c *timegrid.Catalog, items []SelectionItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: 载荷为空", ErrInvalidSelectionItem)
	}
	seen := make(map[string]bool, len(items))
	for i := range items {
		if err := items[i].Validate(c); err != nil {
			return err
		}
		if seen[items[i].DayName] {
			return fmt.Errorf("%w: 星期 %s 重复", ErrInvalidSelectionItem, items[i].DayName)
		}
		seen[items[i].DayName] = true
	}
	return nil
}

// FromPayload 由网格载荷构造提交项
func FromPayload(items []timegrid.PayloadItem) []SelectionItem {
	out := make([]SelectionItem, 0, len(items))
	for _, it := range items {
		out = append(out, SelectionItem{
			DayID:      it.DayID,
			DayName:    it.DayName,
			Times:      it.Times,
			TimeRanges: it.TimeRanges,
		})
	}
	return out
}

// DeleteSelectionsRequest 批量删除已提交记录
type DeleteSelectionsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

// ── 选择会话 DTO ──

// 会话用途
const (
	PurposeAvailability = "availability"
	PurposePreference   = "preference"
)

// OpenSessionRequest 打开网格会话
type OpenSessionRequest struct {
	Purpose  string `json:"purpose"   binding:"required,oneof=availability preference"`
	CourseID string `json:"course_id" binding:"omitempty,uuid"`
	Mode     string `json:"mode"      binding:"omitempty,oneof=add delete"`
}

// ToggleRequest 点击格子
type ToggleRequest struct {
	Day  string `json:"day"  binding:"required"`
	Hour string `json:"hour" binding:"required"`
}

// SwitchModeRequest 切换模式
type SwitchModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=add delete"`
}

// SessionResponse 会话当前视图
type SessionResponse struct {
	ID            string                 `json:"id"`
	Purpose       string                 `json:"purpose"`
	CourseID      string                 `json:"course_id,omitempty"`
	Mode          string                 `json:"mode"`
	Privileged    bool                   `json:"privileged"`
	Days          []string               `json:"days"`
	Hours         []string               `json:"hours"`
	Cells         map[string]string      `json:"cells"` // "{day}-{hour}" → past | eligible，其余格子省略
	Items         []timegrid.PayloadItem `json:"items"`
	Deletions     []string               `json:"deletions"`
	MinSelections int                    `json:"min_selections,omitempty"`
	Selected      int                    `json:"selected"`
}

// ToggleResponse 点击结果
type ToggleResponse struct {
	Changed  bool            `json:"changed"`
	DeleteID string          `json:"delete_id,omitempty"`
	Session  SessionResponse `json:"session"`
}

// SubmitSessionResponse 会话提交结果
type SubmitSessionResponse struct {
	Mode    string   `json:"mode"`
	Created int      `json:"created"`
	Deleted int      `json:"deleted"`
	IDs     []string `json:"ids"`
}
