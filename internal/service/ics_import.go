package service

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/timegrid"
)

// ── ICS 导入 ──────────────────────────────────────────────
//
// 将讲师日历中的 VEVENT 转换为可用时间提交项：
//   - DTSTART 决定星期，事件覆盖 [开始, 结束) 内的目录小时
//   - 全天事件与目录外的星期跳过
//   - 同一星期的多个事件合并后按目录顺序压缩为区间
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

var (
	ErrICSInvalid  = errors.New("ICS 文件解析失败")
	ErrICSNoEvents = errors.New("日历中没有可导入的事件")
)

// icsImport ICS 解析结果
type icsImport struct {
	Items   []dto.SelectionItem
	Events  int
	Skipped int
}

// parseAvailabilityICS 解析 ICS 内容并按星期聚合覆盖的目录小时
func parseAvailabilityICS(reader io.Reader, catalog *timegrid.Catalog, loc *time.Location) (*icsImport, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSInvalid, err)
	}

	result := &icsImport{}
	covered := make(map[string]map[string]bool)

	for _, evt := range cal.Events() {
		result.Events++
		day, hours, ok := coveredHours(evt, catalog, loc)
		if !ok {
			result.Skipped++
			continue
		}
		if covered[day] == nil {
			covered[day] = make(map[string]bool)
		}
		for _, h := range hours {
			covered[day][h] = true
		}
	}

	for _, day := range catalog.Days() {
		set := covered[day]
		if len(set) == 0 {
			continue
		}
		times := make([]string, 0, len(set))
		for h := range set {
			times = append(times, h)
		}
		times = catalog.SortHours(times)
		result.Items = append(result.Items, dto.SelectionItem{
			DayID:      catalog.DayID(day),
			DayName:    day,
			Times:      times,
			TimeRanges: catalog.Compress(times),
		})
	}

	if len(result.Items) == 0 {
		return result, ErrICSNoEvents
	}
	return result, nil
}

// coveredHours 计算单个事件覆盖的星期与目录小时
func coveredHours(evt *ics.VEvent, catalog *timegrid.Catalog, loc *time.Location) (string, []string, bool) {
	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil || allDay {
		return "", nil, false
	}

	end, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		prop := evt.GetProperty(ics.ComponentPropertyDuration)
		if prop == nil {
			return "", nil, false
		}
		d, err := parseICSDuration(prop.Value)
		if err != nil {
			return "", nil, false
		}
		end = start.Add(d)
	}
	if !end.After(start) {
		return "", nil, false
	}

	day := start.Weekday().String()
	if !catalog.HasDay(day) {
		return "", nil, false
	}

	from := start.Hour()*60 + start.Minute()
	to := from + int(end.Sub(start).Minutes())
	// 跨午夜的部分截断到当天结束
	if to > 24*60 {
		to = 24 * 60
	}

	var hours []string
	for _, h := range catalog.Hours() {
		m, ok := clockMinute(h)
		if ok && m >= from && m < to {
			hours = append(hours, h)
		}
	}
	if len(hours) == 0 {
		return "", nil, false
	}
	return day, hours, true
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，第二个返回值表示是否为全天日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}

	// 检查 TZID 参数
	tzLoc := loc
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if l, err := time.LoadLocation(v[0]); err == nil {
				tzLoc = l
			}
		}
	}

	if t, err := time.ParseInLocation("20060102T150405", val, tzLoc); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.ParseInLocation("20060102", val, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}

var icsDurationPattern = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseICSDuration 解析 RFC 5545 DURATION（如 PT1H30M、P1D）
func parseICSDuration(value string) (time.Duration, error) {
	m := icsDurationPattern.FindStringSubmatch(strings.TrimPrefix(strings.TrimSpace(value), "+"))
	if m == nil || value == "P" || value == "PT" {
		return 0, fmt.Errorf("无法解析时长: %s", value)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, err
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}

// clockMinute "HH:MM" → 当天分钟数
func clockMinute(hour string) (int, bool) {
	t, err := time.Parse("15:04", hour)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
