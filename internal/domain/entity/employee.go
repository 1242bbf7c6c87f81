package entity

import "time"

// Employee is both a managed person record and the login principal. Name
// doubles as the username.
type Employee struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:employee_name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Salary       int       `gorm:"column:employee_salary;not null" json:"salary"`
	Department   string    `gorm:"type:varchar(100)" json:"department"`
	PasswordHash string    `gorm:"column:password;type:text;not null" json:"password_hash"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Roles []Role `gorm:"many2many:employee_roles;joinForeignKey:EmployeeID;joinReferences:RoleID" json:"roles"`
}

func (Employee) TableName() string {
	return "employees"
}

// RoleNames returns the names of the loaded roles in assignment order.
func (e *Employee) RoleNames() []string {
	names := make([]string, 0, len(e.Roles))
	for _, role := range e.Roles {
		names = append(names, role.Name)
	}
	return names
}

// HasRole reports whether a role with the given id is already assigned.
func (e *Employee) HasRole(roleID uint) bool {
	for _, role := range e.Roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}
