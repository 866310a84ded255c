package domain

import (
	"time"
)

type Role string

const (
	RoleFieldStaff    Role = "外勤人员"
	RoleSupervisor    Role = "主管"
	RoleAdministrator Role = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// IsAdministrator 管理员可以修改和删除任何人的周计划
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}
