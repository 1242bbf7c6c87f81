package dto

// Request DTOs

// RoleRef points at an existing role by id or, when id is zero, by name.
type RoleRef struct {
	ID   uint   `json:"id,omitempty"`
	Name string `json:"name,omitempty" validate:"required_without=ID"`
}

type CreateEmployeeRequest struct {
	Name       string    `json:"name" validate:"required,alpha,max=100"`
	Salary     *int      `json:"salary" validate:"required"`
	Department string    `json:"department" validate:"omitempty,alpha,max=100"`
	Password   string    `json:"password" validate:"required,max=72"`
	Roles      []RoleRef `json:"roles" validate:"omitempty,dive"`
}

// UpdateEmployeeRequest replaces every field. A nil Roles keeps the current
// role set; an empty, non-nil Roles clears it.
type UpdateEmployeeRequest struct {
	Name       string    `json:"name" validate:"required,alpha,max=100"`
	Salary     *int      `json:"salary" validate:"required"`
	Department string    `json:"department" validate:"omitempty,alpha,max=100"`
	Password   string    `json:"password" validate:"required,max=72"`
	Roles      []RoleRef `json:"roles" validate:"omitempty,dive"`
}

// ListEmployeesRequest mirrors the query string of GET /employees.
type ListEmployeesRequest struct {
	Name string
	Page int
	Size int
	Sort []string
}

// Response DTOs

type EmployeeResponse struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	Salary     int            `json:"salary"`
	Department string         `json:"department"`
	Roles      []RoleResponse `json:"roles"`
}

type EmployeeListResponse struct {
	Employees   []EmployeeResponse `json:"employees"`
	CurrentPage int                `json:"currentPage"`
	TotalItems  int64              `json:"totalItems"`
	TotalPages  int                `json:"totalPages"`
}
