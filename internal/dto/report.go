package dto

// ── 日报模块 DTO ──

// ReportItem 单条工作任务（一次提交包含 N 条，同属一人一天）
type ReportItem struct {
	TaskDescription   string   `json:"task_description"`
	StartClock        string   `json:"start_time"` // "HH:MM" 24小时制
	EndClock          string   `json:"end_time"`   // "HH:MM" 24小时制
	Status            string   `json:"status"`
	PartyTags         []string `json:"work_for_party"` // 标签数组，入库前去重拼接
	RelatedDepartment string   `json:"related_department"`
	AssignedBy        string   `json:"assigned_by"`
	Remarks           string   `json:"remarks"`
}

// SubmitReportRequest 批量提交日报请求
type SubmitReportRequest struct {
	WorkDate string       `json:"work_date" binding:"required"` // "YYYY-MM-DD"
	Items    []ReportItem `json:"items"     binding:"required,min=1"`
}

// ItemError 条目级校验错误（定位到条目下标与字段）
type ItemError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmitReportResponse 提交成功响应
type SubmitReportResponse struct {
	Saved int `json:"saved"`
}

// DateRangeQuery 日期范围查询参数
type DateRangeQuery struct {
	From string `form:"from" binding:"required"` // "YYYY-MM-DD"
	To   string `form:"to"   binding:"required"` // "YYYY-MM-DD"
}

// AdminReportQuery 管理端日报查询参数
type AdminReportQuery struct {
	DateRangeQuery
	Keyword    string `form:"keyword"    binding:"omitempty,max=100"` // 姓名/工号模糊匹配
	Department string `form:"department" binding:"omitempty,max=50"`  // 精确匹配，"All"/空 = 不过滤
}

// ReportRowResponse 明细视图行（含计算出的任务序号与时长）
type ReportRowResponse struct {
	ReportID          string `json:"report_id"`
	UserID            string `json:"user_id,omitempty"`
	TaskNumber        int    `json:"task_number"` // T/N：同人同天 1 起计
	ReportDate        string `json:"report_date"` // "DD-MM-YYYY"
	EmployeeID        string `json:"employee_id"`
	StaffName         string `json:"staff_name"`
	StaffDesignation  string `json:"staff_designation"`
	StaffDepartment   string `json:"staff_department"`
	TaskDescription   string `json:"task_description"`
	StartTime         string `json:"start_time"` // "HH:MM"
	EndTime           string `json:"end_time"`   // "HH:MM"
	DurationMinutes   int    `json:"duration_minutes"`
	Duration          string `json:"duration"` // "HH:MM"
	Status            string `json:"status"`
	WorkForParty      string `json:"work_for_party"`
	RelatedDepartment string `json:"related_department"`
	AssignedBy        string `json:"assigned_by"`
	Remarks           string `json:"remarks"`
	SubmittedAt       string `json:"submitted_at"` // "DD-MM-YYYY HH:MM"
}

// GroupRowResponse 汇总视图行（按员工分组）
type GroupRowResponse struct {
	GroupKey        string         `json:"group_key"` // user_id，档案缺失时为 unknown-<report_id>
	StaffName       string         `json:"staff_name"`
	Designation     string         `json:"designation"`
	Department      string         `json:"department"`
	Reports         int            `json:"reports"`
	TotalMinutes    int            `json:"total_minutes"`
	TotalDuration   string         `json:"total_duration"` // "HH:MM"
	Statuses        map[string]int `json:"statuses"`
	StatusSummary   string         `json:"status_summary"` // "Complete: 2 | Pending: 1"（首次出现序）
}

// AdminReportResponse 管理端日报查询响应（明细 + 汇总一次给齐）
type AdminReportResponse struct {
	Detailed []ReportRowResponse `json:"detailed"`
	Grouped  []GroupRowResponse  `json:"grouped"`
}

// ExportReportQuery CSV 导出查询参数（与管理端查询同口径 + 视图选择）
type ExportReportQuery struct {
	AdminReportQuery
	View string `form:"view" binding:"omitempty,oneof=detailed grouped"` // 缺省 detailed
}

// ExportDayQuery 单日 Excel 导出查询参数
type ExportDayQuery struct {
	Date string `form:"date" binding:"required"` // "YYYY-MM-DD"
}

// ReportItemDraft 日历预填生成的任务草稿（仅预填可推导字段）
type ReportItemDraft struct {
	TaskDescription string `json:"task_description"`
	StartClock      string `json:"start_time"`
	EndClock        string `json:"end_time"`
}

// PrefillResponse 日历预填响应
type PrefillResponse struct {
	Items []ReportItemDraft `json:"items"`
}

// [自证通过] internal/dto/report.go
