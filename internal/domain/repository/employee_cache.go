package repository

import (
	"context"

	"employee-role-api/internal/domain/entity"
)

// EmployeeCache is the read-through cache in front of EmployeeRepository.FindByID.
// Get reports a miss with found=false and a nil error.
type EmployeeCache interface {
	Get(ctx context.Context, id uint) (employee *entity.Employee, found bool, err error)
	Set(ctx context.Context, employee *entity.Employee) error
	Delete(ctx context.Context, id uint) error
}
