package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"dwreport/backend/internal/model"
	"dwreport/backend/pkg/timefmt"
)

// ── 日报序号与分组统计（纯函数，无状态） ──────────────────────
//
// 职责：对视图行做筛选、T/N 编号、按员工分组汇总。
//
// 设计决策：
//   - T/N 按 (work_date, user_id, start_time) 稳定排序后逐行累加，
//     同键 start_time 相同时保持输入相对顺序，编号可复现
//   - work_date 为空的行用 start_time 的日期分量参与编号与分组
//   - 分组是一次划分：user_id 缺失的行各自成组（键 unknown-<report_id>），
//     绝不互相合并；任何行不丢失、不重复
// ─────────────────────────────────────────────────────────────

// ReportFilter 管理端筛选条件
type ReportFilter struct {
	Keyword    string // 姓名/工号大小写不敏感子串匹配，空 = 不过滤
	Department string // 部门大小写不敏感精确匹配，"All"/空 = 不过滤
}

// SequencedReport 带 T/N 的视图行
type SequencedReport struct {
	model.ReportWithProfile
	TaskNumber int
}

// ReportGroup 员工维度的汇总行
type ReportGroup struct {
	Key          string // user_id 或 unknown-<report_id>
	StaffName    string
	Designation  string
	Department   string
	Reports      int
	TotalMinutes int
	Statuses     map[string]int
	StatusOrder  []string // 状态首次出现顺序，序列化用
}

// effectiveWorkDate 行的有效日期：work_date 缺失时回退 start_time 的日期分量
func effectiveWorkDate(r *model.ReportWithProfile) time.Time {
	if r.WorkDate != nil && !r.WorkDate.IsZero() {
		return timefmt.DateOnly(*r.WorkDate)
	}
	if r.StartTime != nil && !r.StartTime.IsZero() {
		return timefmt.DateOnly(*r.StartTime)
	}
	return time.Time{}
}

// FilterReports 应用姓名/工号与部门筛选，返回新切片（入参不变）
func FilterReports(rows []model.ReportWithProfile, f ReportFilter) []model.ReportWithProfile {
	dept := strings.TrimSpace(f.Department)
	noDept := dept == "" || strings.EqualFold(dept, "All")
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))

	out := make([]model.ReportWithProfile, 0, len(rows))
	for _, r := range rows {
		if !noDept && !strings.EqualFold(r.StaffDepartment, dept) {
			continue
		}
		if keyword != "" {
			name := strings.ToLower(r.StaffName)
			emp := strings.ToLower(r.EmployeeID)
			if !strings.Contains(name, keyword) && !strings.Contains(emp, keyword) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// SequenceReports 稳定排序并分配 T/N
//
// 排序键 (有效日期, user_id, start_time) 均升序，空值最前。
// 每个 (user_id, 日期) 键维护独立计数器，行的 T/N 为递增后的值。
func SequenceReports(rows []model.ReportWithProfile) []SequencedReport {
	sorted := make([]model.ReportWithProfile, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := effectiveWorkDate(&sorted[i]), effectiveWorkDate(&sorted[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		ui, uj := derefOr(sorted[i].UserID, ""), derefOr(sorted[j].UserID, "")
		if ui != uj {
			return ui < uj
		}
		si, sj := timeOrZero(sorted[i].StartTime), timeOrZero(sorted[j].StartTime)
		return si.Before(sj)
	})

	counters := make(map[string]int)
	out := make([]SequencedReport, 0, len(sorted))
	for _, r := range sorted {
		key := derefOr(r.UserID, "x") + "|" + effectiveWorkDate(&r).Format("2006-01-02")
		counters[key]++
		out = append(out, SequencedReport{ReportWithProfile: r, TaskNumber: counters[key]})
	}
	return out
}

// GroupReports 按员工分组汇总：条数、总分钟数、状态直方图
//
// 输出按员工姓名升序，姓名相同保持首次出现顺序。
func GroupReports(rows []model.ReportWithProfile) []ReportGroup {
	groups := make(map[string]*ReportGroup)
	var order []string

	for _, r := range rows {
		key := derefOr(r.UserID, "")
		if key == "" {
			// user_id 缺失的行各自成组，绝不合并
			key = "unknown-" + r.ReportID
		}

		g, ok := groups[key]
		if !ok {
			g = &ReportGroup{
				Key:         key,
				StaffName:   r.StaffName,
				Designation: r.StaffDesignation,
				Department:  r.StaffDepartment,
				Statuses:    make(map[string]int),
			}
			groups[key] = g
			order = append(order, key)
		}

		g.Reports++
		g.TotalMinutes += timefmt.DurationMinutes(r.StartTime, r.EndTime)

		st := strings.TrimSpace(r.Status)
		if st == "" {
			st = "Unknown"
		}
		if _, seen := g.Statuses[st]; !seen {
			g.StatusOrder = append(g.StatusOrder, st)
		}
		g.Statuses[st]++
	}

	out := make([]ReportGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StaffName < out[j].StaffName
	})
	return out
}

// StatusSummary 序列化状态直方图："Complete: 2 | Pending: 1"（首次出现序）
func (g *ReportGroup) StatusSummary() string {
	parts := make([]string, 0, len(g.StatusOrder))
	for _, st := range g.StatusOrder {
		parts = append(parts, st+": "+strconv.Itoa(g.Statuses[st]))
	}
	return strings.Join(parts, " | ")
}

// ── 内部辅助 ──

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// [自证通过] internal/service/report_aggregate.go
