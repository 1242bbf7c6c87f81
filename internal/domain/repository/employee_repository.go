package repository

import (
	"context"

	"employee-role-api/internal/domain/entity"
)

// EmployeeRepository is the employee half of the credential store. Every
// Find method loads the employee's roles alongside it and returns nil, nil
// when nothing matches.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	FindByID(ctx context.Context, id uint) (*entity.Employee, error)
	FindByName(ctx context.Context, name string) (*entity.Employee, error)
	FindAll(ctx context.Context, filter entity.EmployeeFilter) ([]entity.Employee, int64, error)
	Update(ctx context.Context, employee *entity.Employee) error
	AddRole(ctx context.Context, employeeID, roleID uint) error
	Delete(ctx context.Context, id uint) (int64, error)
}
