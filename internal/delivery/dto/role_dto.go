package dto

// Request DTOs

type CreateRoleRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type AddRoleToEmployeeRequest struct {
	Name     string `json:"name" validate:"required"`
	RoleName string `json:"roleName" validate:"required"`
}

// Response DTOs

type RoleResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
