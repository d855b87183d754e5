package timegrid

// ── 投票聚合 ──────────────────────────────────────────────
//
// 每位投票人对每个 (day, hour) 至多贡献 1 票：同一人的多条重叠记录先按
// (ownerId, day, hour) 去重再计数。所有投票人等权，结果与输入顺序无关。
// ─────────────────────────────────────────────────────────────

// VoteRecord 单个人在某一天的小时选择
type VoteRecord struct {
	OwnerID     string   `json:"owner_id"`
	CategoryKey string   `json:"category_key,omitempty"`
	Day         string   `json:"day"`
	Hours       []string `json:"hours"`
}

// Tally "{day}-{hour}" → 票数
type Tally map[string]int

// Get 读取某格票数，未出现的格子为 0
func (t Tally) Get(day, hour string) int {
	return t[SlotKey(day, hour)]
}

// Max 最高票数
func (t Tally) Max() int {
	top := 0
	for _, n := range t {
		if n > top {
			top = n
		}
	}
	return top
}

// Matrix 按目录展开为 天 × 小时 的二维数组，未统计格子填 0
func (t Tally) Matrix(c *Catalog) [][]int {
	m := make([][]int, len(c.days))
	for i, day := range c.days {
		row := make([]int, len(c.hours))
		for j, hour := range c.hours {
			row[j] = t.Get(day, hour)
		}
		m[i] = row
	}
	return m
}

type aggregateConfig struct {
	category    string
	hasCategory bool
	owners      map[string]bool
}

// AggregateOption 聚合过滤条件
type AggregateOption func(*aggregateConfig)

// WithCategory 仅统计 CategoryKey 等于 key 的记录（例如某门课程）
func WithCategory(key string) AggregateOption {
	return func(c *aggregateConfig) {
		c.category = key
		c.hasCategory = true
	}
}

// WithOwners 仅统计指定投票人（例如某个小组的学生）
func WithOwners(ids ...string) AggregateOption {
	return func(c *aggregateConfig) {
		if c.owners == nil {
			c.owners = make(map[string]bool, len(ids))
		}
		for _, id := range ids {
			c.owners[id] = true
		}
	}
}

// Aggregate 统计每个格子有多少不同的人选择
func Aggregate(records []VoteRecord, opts ...AggregateOption) Tally {
	var cfg aggregateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	type vote struct{ owner, day, hour string }
	seen := make(map[vote]bool)
	tally := make(Tally)

	for _, r := range records {
		if cfg.hasCategory && r.CategoryKey != cfg.category {
			continue
		}
		if cfg.owners != nil && !cfg.owners[r.OwnerID] {
			continue
		}
		for _, h := range r.Hours {
			v := vote{owner: r.OwnerID, day: r.Day, hour: h}
			if seen[v] {
				continue
			}
			seen[v] = true
			tally[SlotKey(r.Day, h)]++
		}
	}
	return tally
}
