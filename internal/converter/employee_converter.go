package converter

import (
	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/domain/entity"
)

// EmployeeToResponse converts an Employee entity to its response DTO.
// The password hash is never exposed.
func EmployeeToResponse(employee *entity.Employee) *dto.EmployeeResponse {
	if employee == nil {
		return nil
	}

	roles := make([]dto.RoleResponse, 0, len(employee.Roles))
	for i := range employee.Roles {
		roles = append(roles, *RoleToResponse(&employee.Roles[i]))
	}

	return &dto.EmployeeResponse{
		ID:         employee.ID,
		Name:       employee.Name,
		Salary:     employee.Salary,
		Department: employee.Department,
		Roles:      roles,
	}
}

func EmployeesToResponses(employees []entity.Employee) []dto.EmployeeResponse {
	responses := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		responses = append(responses, *EmployeeToResponse(&employees[i]))
	}
	return responses
}

func EmployeePageToResponse(page *entity.EmployeePage) *dto.EmployeeListResponse {
	return &dto.EmployeeListResponse{
		Employees:   EmployeesToResponses(page.Employees),
		CurrentPage: page.Page,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
	}
}

func RoleToResponse(role *entity.Role) *dto.RoleResponse {
	if role == nil {
		return nil
	}
	return &dto.RoleResponse{
		ID:   role.ID,
		Name: role.Name,
	}
}
