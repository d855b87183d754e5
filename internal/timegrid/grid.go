package timegrid

import "sort"

// ── SlotGrid ──────────────────────────────────────────────
//
// Grid 维护一次编辑会话中的选择状态（SelectionState），并执行可选性规则：
//   - add 模式：特权身份、历史已提交、或资格表允许的格子才可切换
//   - delete 模式：点击格子只解析它所属的已提交记录 ID，由调用方持有的 DeletionSet 负责增删
//
// Grid 不做 I/O，也不返回错误；目录外的输入一律视为空操作。
// 每个 Grid 实例独立持有全部状态，不同实例之间没有共享的可变数据。
// ─────────────────────────────────────────────────────────────

// Mode 网格编辑模式
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeDelete Mode = "delete"
)

// Valid 判断模式是否合法
func (m Mode) Valid() bool { return m == ModeAdd || m == ModeDelete }

// CellClass 格子的三态分类
type CellClass int

const (
	CellNone CellClass = iota
	CellEligible
	CellPast
)

// String 返回分类名
func (c CellClass) String() string {
	switch c {
	case CellPast:
		return "past"
	case CellEligible:
		return "eligible"
	default:
		return "none"
	}
}

// EligibilityEntry 外部提供的某一天可选小时（如讲师可用时间）。
// OwnerID 仅用于回显，核心不解释；DayID 为 0 表示记录未携带数字 ID。
type EligibilityEntry struct {
	Day           string   `json:"day"`
	DayID         int      `json:"day_id,omitempty"`
	EligibleHours []string `json:"eligible_hours"`
	OwnerID       string   `json:"owner_id,omitempty"`
}

// PastSelection 当前操作者此前已提交的某天小时集合
type PastSelection struct {
	Day   string   `json:"day"`
	Hours []string `json:"hours"`
}

// CommittedSelection 当前操作者的已提交记录，用于构建 DeletionIndex
type CommittedSelection struct {
	ID    string   `json:"id"`
	Day   string   `json:"day"`
	Hours []string `json:"hours"`
}

// DeletionEntry DeletionIndex 中的一项
type DeletionEntry struct {
	CommittedID string
	AllTimes    []string
}

// PayloadItem 对外输出的单日选择载荷
type PayloadItem struct {
	DayID      int         `json:"dayId"`
	DayName    string      `json:"dayName"`
	Times      []string    `json:"times"`
	TimeRanges []TimeRange `json:"timeRanges"`
}

// Options Initialize 的输入，缺省字段按空集合处理
type Options struct {
	Eligibility []EligibilityEntry
	Past        []PastSelection
	Committed   []CommittedSelection
	Mode        Mode
	Privileged  bool
}

// Toggle 一次点击的结果。
// Changed 表示 add 模式下 SelectionState 发生了变化；
// DeleteID 非空表示 delete 模式下解析出的删除意图。
type Toggle struct {
	Changed  bool
	DeleteID string
}

// Grid SlotGrid 实现，非并发安全（一个会话一个实例）
type Grid struct {
	catalog    *Catalog
	mode       Mode
	privileged bool

	eligible  map[string]map[string]bool
	dayIDs    map[string]int
	past      map[string]map[string]bool
	committed []CommittedSelection
	deletion  map[string]DeletionEntry

	selected map[string][]string
	onChange func([]PayloadItem)
}

// New 基于目录创建空网格（add 模式、无资格数据）
func New(catalog *Catalog) *Grid {
	g := &Grid{catalog: catalog}
	g.Initialize(Options{})
	return g
}

// Catalog 返回网格使用的目录
func (g *Grid) Catalog() *Catalog { return g.catalog }

// Mode 当前模式
func (g *Grid) Mode() Mode { return g.mode }

// Privileged 当前是否以特权身份操作
func (g *Grid) Privileged() bool { return g.privileged }

// OnChange 注册选择变化回调；传 nil 取消
func (g *Grid) OnChange(fn func([]PayloadItem)) { g.onChange = fn }

// Initialize 重置选择状态并重建各查找表
func (g *Grid) Initialize(opts Options) {
	g.mode = opts.Mode
	if !g.mode.Valid() {
		g.mode = ModeAdd
	}
	g.privileged = opts.Privileged
	g.selected = make(map[string][]string)

	g.eligible = make(map[string]map[string]bool)
	g.dayIDs = make(map[string]int)
	for _, e := range opts.Eligibility {
		if !g.catalog.HasDay(e.Day) {
			continue
		}
		if e.DayID != 0 && g.dayIDs[e.Day] == 0 {
			g.dayIDs[e.Day] = e.DayID
		}
		set := g.eligible[e.Day]
		if set == nil {
			set = make(map[string]bool)
			g.eligible[e.Day] = set
		}
		for _, h := range e.EligibleHours {
			if g.catalog.HasHour(h) {
				set[h] = true
			}
		}
	}

	g.past = make(map[string]map[string]bool)
	for _, p := range opts.Past {
		if !g.catalog.HasDay(p.Day) {
			continue
		}
		set := g.past[p.Day]
		if set == nil {
			set = make(map[string]bool)
			g.past[p.Day] = set
		}
		for _, h := range p.Hours {
			if g.catalog.HasHour(h) {
				set[h] = true
			}
		}
	}

	g.committed = append([]CommittedSelection(nil), opts.Committed...)
	g.rebuildDeletionIndex()
}

// rebuildDeletionIndex 仅在 delete 模式下构建 "{day}-{hour}" → 记录 的索引
func (g *Grid) rebuildDeletionIndex() {
	g.deletion = make(map[string]DeletionEntry)
	if g.mode != ModeDelete {
		return
	}
	for _, cs := range g.committed {
		if !g.catalog.HasDay(cs.Day) {
			continue
		}
		entry := DeletionEntry{
			CommittedID: cs.ID,
			AllTimes:    g.catalog.SortHours(cs.Hours),
		}
		for _, h := range entry.AllTimes {
			key := SlotKey(cs.Day, h)
			// 同一格子属于多条记录时保留先出现的一条
			if _, exists := g.deletion[key]; !exists {
				g.deletion[key] = entry
			}
		}
	}
}

// DeletionLookup 查询格子所属的已提交记录
func (g *Grid) DeletionLookup(day, hour string) (DeletionEntry, bool) {
	e, ok := g.deletion[SlotKey(day, hour)]
	return e, ok
}

// Classify 三态分类：past 优先于 eligible
func (g *Grid) Classify(day, hour string) CellClass {
	if g.past[day][hour] {
		return CellPast
	}
	if g.eligible[day][hour] {
		return CellEligible
	}
	return CellNone
}

// Togglable add 模式下的可选性判断
func (g *Grid) Togglable(day, hour string) bool {
	if !g.catalog.Contains(day, hour) {
		return false
	}
	return g.privileged || g.past[day][hour] || g.eligible[day][hour]
}

// IsSelected 格子是否处于当前选择中
func (g *Grid) IsSelected(day, hour string) bool {
	for _, h := range g.selected[day] {
		if h == hour {
			return true
		}
	}
	return false
}

// Toggle 点击一个格子
func (g *Grid) Toggle(day, hour string) Toggle {
	if !g.catalog.Contains(day, hour) {
		return Toggle{}
	}

	if g.mode == ModeDelete {
		entry, ok := g.deletion[SlotKey(day, hour)]
		if !ok {
			return Toggle{}
		}
		return Toggle{DeleteID: entry.CommittedID}
	}

	if !g.Togglable(day, hour) {
		return Toggle{}
	}

	current := g.selected[day]
	idx := -1
	for i, h := range current {
		if h == hour {
			idx = i
			break
		}
	}

	if idx >= 0 {
		next := make([]string, 0, len(current)-1)
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
		if len(next) == 0 {
			delete(g.selected, day)
		} else {
			g.selected[day] = next
		}
	} else {
		next := append(append(make([]string, 0, len(current)+1), current...), hour)
		sort.Slice(next, func(i, j int) bool {
			return g.catalog.HourPos(next[i]) < g.catalog.HourPos(next[j])
		})
		g.selected[day] = next
	}

	g.notify()
	return Toggle{Changed: true}
}

// SetMode 切换模式：清空未提交的选择以及调用方的删除集合，避免混合提交增删意图
func (g *Grid) SetMode(mode Mode, deletions DeletionSet) {
	if !mode.Valid() {
		return
	}
	g.mode = mode
	g.selected = make(map[string][]string)
	deletions.Clear()
	g.rebuildDeletionIndex()
	g.notify()
}

// Reset 清空选择状态，保留资格/历史数据（提交成功后调用）
func (g *Grid) Reset() {
	if len(g.selected) == 0 {
		return
	}
	g.selected = make(map[string][]string)
	g.notify()
}

// Selection 当前选择的快照（按星期分组、按目录排序）
func (g *Grid) Selection() map[string][]string {
	out := make(map[string][]string, len(g.selected))
	for day, hours := range g.selected {
		out[day] = append([]string(nil), hours...)
	}
	return out
}

// Restore 通过逐个 Toggle 回放快照，非法格子会被忽略
func (g *Grid) Restore(selection map[string][]string) {
	if g.mode != ModeAdd {
		return
	}
	for _, day := range g.catalog.days {
		for _, h := range g.catalog.SortHours(selection[day]) {
			if !g.IsSelected(day, h) {
				g.Toggle(day, h)
			}
		}
	}
}

// Payload 由选择状态派生的载荷。
// 纯函数：按目录顺序遍历星期，两次调用之间若无修改则输出完全一致。
func (g *Grid) Payload() []PayloadItem {
	items := make([]PayloadItem, 0, len(g.selected))
	for _, day := range g.catalog.days {
		hours := g.selected[day]
		if len(hours) == 0 {
			continue
		}
		times := g.catalog.SortHours(hours)
		dayID := g.dayIDs[day]
		if dayID == 0 {
			dayID = g.catalog.DayID(day)
		}
		items = append(items, PayloadItem{
			DayID:      dayID,
			DayName:    day,
			Times:      times,
			TimeRanges: g.catalog.Compress(times),
		})
	}
	return items
}

func (g *Grid) notify() {
	if g.onChange != nil {
		g.onChange(g.Payload())
	}
}

// ── DeletionSet ──

// DeletionSet 调用方持有的"待删除记录 ID"集合
type DeletionSet map[string]struct{}

// NewDeletionSet 创建删除集合
func NewDeletionSet(ids ...string) DeletionSet {
	s := make(DeletionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Apply 应用一次 Toggle 的删除意图，返回该 ID 当前是否在集合中
func (s DeletionSet) Apply(t Toggle) bool {
	if t.DeleteID == "" {
		return false
	}
	if _, ok := s[t.DeleteID]; ok {
		delete(s, t.DeleteID)
		return false
	}
	s[t.DeleteID] = struct{}{}
	return true
}

// Has 判断 ID 是否在集合中
func (s DeletionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clear 清空集合
func (s DeletionSet) Clear() {
	for id := range s {
		delete(s, id)
	}
}

// IDs 排序后的 ID 列表
func (s DeletionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
