package model

import (
	"reflect"
	"testing"

	"github.com/Oskru/study-smart/internal/timegrid"
)

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want StringArray
	}{
		{"nil", nil, nil},
		{"空数组", "{}", StringArray{}},
		{"无引号", []byte("{09:00,10:00}"), StringArray{"09:00", "10:00"}},
		{"带引号与转义", `{"a b","c,d","e\"f"}`, StringArray{"a b", "c,d", `e"f`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringArray
			if err := got.Scan(tt.src); err != nil {
				t.Fatalf("Scan 失败: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望 %#v，实际 %#v", tt.want, got)
			}
		})
	}

	var bad StringArray
	if err := bad.Scan("09:00"); err == nil {
		t.Error("非数组字面量应返回错误")
	}
}

func TestStringArray_ValueRoundTrip(t *testing.T) {
	in := StringArray{"09:00", `x"y`, "a,b", `back\slash`}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value 失败: %v", err)
	}
	var out StringArray
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("往返不一致: %#v → %#v", in, out)
	}
}

func TestRangeList_ValueAndScan(t *testing.T) {
	in := RangeList{{Start: "09:00", End: "11:00"}, {Start: "13:00", End: "13:00"}}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value 失败: %v", err)
	}
	if v != `[["09:00","11:00"],["13:00","13:00"]]` {
		t.Errorf("JSONB 文本不符: %v", v)
	}

	var out RangeList
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if !reflect.DeepEqual([]timegrid.TimeRange(out), []timegrid.TimeRange(in)) {
		t.Errorf("往返不一致: %v", out)
	}
}
