package timegrid

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ── 目录配置 ──────────────────────────────────────────────
//
// Catalog 描述网格的两个固定维度：有序的星期列表与有序的小时标签列表。
// 两者都来自启动配置，不同部署可以使用不同粒度/范围的小时列表。
// 小时列表允许存在空档（例如跳过午休），也允许跨越午夜（23:00 之后是 00:00）。
// 两个标签"连续"需同时满足：
//   - 在列表中位置相邻
//   - 若标签可解析为 HH:MM，二者的钟点差（对 24h 取模）等于目录步长
//
// 步长取相邻项之间最小的正钟点差，因此 [09:00 10:00 11:00 13:00] 中
// 11:00 与 13:00 之间存在空档，不算连续。
// ─────────────────────────────────────────────────────────────

var (
	ErrEmptyDays      = errors.New("星期列表不能为空")
	ErrEmptyHours     = errors.New("小时列表不能为空")
	ErrDuplicateLabel = errors.New("目录中存在重复标签")
)

// DefaultDays 默认星期列表
var DefaultDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DefaultHours 默认小时列表 06:00 ~ 22:00
var DefaultHours = []string{
	"06:00", "07:00", "08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00",
	"15:00", "16:00", "17:00", "18:00", "19:00", "20:00", "21:00", "22:00",
}

// staticDayIDs 星期名 → 数字 ID 的静态回退表
var staticDayIDs = map[string]int{
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
	"Sunday":    7,
}

// Catalog 不可变的星期 × 小时目录，可在多个 Grid 间共享。
type Catalog struct {
	days      []string
	hours     []string
	dayIndex  map[string]int
	hourIndex map[string]int

	// minutes[i] 为 hours[i] 的分钟数；任一标签无法解析时为 nil，退化为纯位置相邻
	minutes []int
	step    int
}

// NewCatalog 创建目录，拒绝空列表与重复标签
func NewCatalog(days, hours []string) (*Catalog, error) {
	if len(days) == 0 {
		return nil, ErrEmptyDays
	}
	if len(hours) == 0 {
		return nil, ErrEmptyHours
	}

	c := &Catalog{
		days:      append([]string(nil), days...),
		hours:     append([]string(nil), hours...),
		dayIndex:  make(map[string]int, len(days)),
		hourIndex: make(map[string]int, len(hours)),
	}
	for i, d := range c.days {
		if _, dup := c.dayIndex[d]; dup {
			return nil, fmt.Errorf("%w: day %q", ErrDuplicateLabel, d)
		}
		c.dayIndex[d] = i
	}
	for i, h := range c.hours {
		if _, dup := c.hourIndex[h]; dup {
			return nil, fmt.Errorf("%w: hour %q", ErrDuplicateLabel, h)
		}
		c.hourIndex[h] = i
	}
	c.minutes, c.step = clockMinutes(c.hours)
	return c, nil
}

// clockMinutes 解析 HH:MM 标签并计算目录步长
func clockMinutes(hours []string) ([]int, int) {
	mins := make([]int, len(hours))
	for i, h := range hours {
		t, err := time.Parse("15:04", h)
		if err != nil {
			return nil, 0
		}
		mins[i] = t.Hour()*60 + t.Minute()
	}
	step := 0
	for i := 1; i < len(mins); i++ {
		d := clockDiff(mins[i-1], mins[i])
		if d > 0 && (step == 0 || d < step) {
			step = d
		}
	}
	return mins, step
}

// clockDiff 从 a 到 b 的钟点差（分钟，对 24h 取模）
func clockDiff(a, b int) int {
	return ((b-a)%(24*60) + 24*60) % (24 * 60)
}

// DefaultCatalog 返回默认目录（周一至周日 × 06:00-22:00）
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultDays, DefaultHours)
	if err != nil {
		panic(err)
	}
	return c
}

// Days 返回星期列表副本
func (c *Catalog) Days() []string { return append([]string(nil), c.days...) }

// Hours 返回小时列表副本
func (c *Catalog) Hours() []string { return append([]string(nil), c.hours...) }

// HasDay 判断星期是否在目录内
func (c *Catalog) HasDay(day string) bool {
	_, ok := c.dayIndex[day]
	return ok
}

// HasHour 判断小时标签是否在目录内
func (c *Catalog) HasHour(hour string) bool {
	_, ok := c.hourIndex[hour]
	return ok
}

// Contains 判断 (day, hour) 是否为目录内的合法格子
func (c *Catalog) Contains(day, hour string) bool {
	return c.HasDay(day) && c.HasHour(hour)
}

// DayPos 星期在目录中的位置，不存在时返回 -1
func (c *Catalog) DayPos(day string) int {
	if i, ok := c.dayIndex[day]; ok {
		return i
	}
	return -1
}

// HourPos 小时标签在目录中的位置，不存在时返回 -1
func (c *Catalog) HourPos(hour string) int {
	if i, ok := c.hourIndex[hour]; ok {
		return i
	}
	return -1
}

// Successor 返回与 hour 连续的下一个目录项；位于空档之前或列表末尾时返回 false
func (c *Catalog) Successor(hour string) (string, bool) {
	i, ok := c.hourIndex[hour]
	if !ok || i+1 >= len(c.hours) {
		return "", false
	}
	if c.minutes != nil && clockDiff(c.minutes[i], c.minutes[i+1]) != c.step {
		return "", false
	}
	return c.hours[i+1], true
}

// isSuccessor 判断 next 是否与 prev 连续
func (c *Catalog) isSuccessor(prev, next string) bool {
	s, ok := c.Successor(prev)
	return ok && s == next
}

// SortHours 按目录顺序排序，丢弃重复项与目录外标签
func (c *Catalog) SortHours(hours []string) []string {
	seen := make(map[string]bool, len(hours))
	out := make([]string, 0, len(hours))
	for _, h := range hours {
		if !c.HasHour(h) || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return c.hourIndex[out[i]] < c.hourIndex[out[j]]
	})
	return out
}

// DayID 星期名 → 数字 ID。
// 目录外返回 0；目录内优先使用静态表（Monday=1 … Sunday=7），
// 静态表之外的自定义星期名回退为目录位置 + 1。
func (c *Catalog) DayID(day string) int {
	i, ok := c.dayIndex[day]
	if !ok {
		return 0
	}
	if id, ok := staticDayIDs[day]; ok {
		return id
	}
	return i + 1
}

// SlotKey 组合键 "{day}-{hour}"
func SlotKey(day, hour string) string {
	return day + "-" + hour
}
