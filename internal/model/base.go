package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/timegrid"
)

// ── PostgreSQL TEXT[] 自定义类型 ──

// StringArray 对应 PostgreSQL TEXT[] 类型，实现 GORM Scanner/Valuer 接口。
type StringArray []string

// Scan 将 PostgreSQL 返回的 {a,"b c"} 文本解析为 []string。
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("StringArray.Scan: unsupported type %T", src)
	}
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return fmt.Errorf("StringArray.Scan: invalid array literal %q", s)
	}
	body := s[1 : len(s)-1]
	arr := StringArray{}
	if body == "" {
		*a = arr
		return nil
	}

	var (
		cur    strings.Builder
		quoted bool
		escape bool
	)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case escape:
			cur.WriteByte(ch)
			escape = false
		case ch == '\\' && quoted:
			escape = true
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			arr = append(arr, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if quoted {
		return fmt.Errorf("StringArray.Scan: unterminated quote in %q", s)
	}
	*a = append(arr, cur.String())
	return nil
}

// Value 将 []string 序列化为 PostgreSQL {"a","b"} 文本，元素一律加引号。
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	parts := make([]string, len(a))
	for i, s := range a {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		parts[i] = `"` + s + `"`
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains 判断是否包含 s
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// ── JSONB 区间列表 ──

// RangeList 对应 JSONB 列，存储 [["09:00","11:00"], ...]
type RangeList []timegrid.TimeRange

// Scan 解析 JSONB
func (r *RangeList) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("RangeList.Scan: unsupported type %T", src)
	}
	var out []timegrid.TimeRange
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("RangeList.Scan: %w", err)
	}
	*r = out
	return nil
}

// Value 序列化为 JSONB 文本
func (r RangeList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]timegrid.TimeRange(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}
