package timegrid

import (
	"encoding/json"
	"fmt"
)

// TimeRange 同一天内连续选中小时的闭区间 [Start, End]。
// JSON 形态为二元数组 ["09:00","11:00"]，与前端既有载荷一致。
type TimeRange struct {
	Start string
	End   string
}

// MarshalJSON 编码为二元数组
func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{r.Start, r.End})
}

// UnmarshalJSON 仅接受长度为 2 的字符串数组
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("timeRange 必须是字符串数组: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("timeRange 长度必须为 2，实际 %d", len(pair))
	}
	r.Start, r.End = pair[0], pair[1]
	return nil
}

// String 形如 "09:00-11:00"
func (r TimeRange) String() string {
	return r.Start + "-" + r.End
}

// Compress 将按目录顺序排好且无重复的小时标签压缩为最少的连续区间。
//
// 相邻关系由目录决定（见 Catalog.Successor），而不是整数加一：
// 跨越午夜的 23:00 → 00:00 是连续的，列表中的空档则会断开区间。
// 输出区间按输入顺序排列，互不重叠且不可再合并。
func (c *Catalog) Compress(sortedTimes []string) []TimeRange {
	if len(sortedTimes) == 0 {
		return []TimeRange{}
	}

	ranges := make([]TimeRange, 0, 1)
	cur := TimeRange{Start: sortedTimes[0], End: sortedTimes[0]}
	for _, t := range sortedTimes[1:] {
		if c.isSuccessor(cur.End, t) {
			cur.End = t
			continue
		}
		ranges = append(ranges, cur)
		cur = TimeRange{Start: t, End: t}
	}
	return append(ranges, cur)
}

// Expand 是 Compress 的逆运算：依次展开每个区间内的全部目录项。
// 端点不在目录内或起点晚于终点的区间展开为空。
func (c *Catalog) Expand(ranges []TimeRange) []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		si, ok1 := c.hourIndex[r.Start]
		ei, ok2 := c.hourIndex[r.End]
		if !ok1 || !ok2 || si > ei {
			continue
		}
		out = append(out, c.hours[si:ei+1]...)
	}
	return out
}
