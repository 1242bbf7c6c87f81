package entity

// Role represents a named permission group assignable to employees
type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// EmployeeRole is the explicit join row between employees and roles.
type EmployeeRole struct {
	EmployeeID uint `gorm:"primaryKey"`
	RoleID     uint `gorm:"primaryKey"`
}

func (EmployeeRole) TableName() string {
	return "employee_roles"
}

// Role names constants
const (
	RoleEngineer      = "ROLE_ENGINEER"
	RoleProjectLeader = "ROLE_PROJECT_LEADER"
	RoleTeamLeader    = "ROLE_TEAM_LEADER"
	RoleManager       = "ROLE_MANAGER"
)
