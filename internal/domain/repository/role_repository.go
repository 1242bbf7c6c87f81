package repository

import (
	"context"

	"employee-role-api/internal/domain/entity"
)

type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	FindByID(ctx context.Context, id uint) (*entity.Role, error)
	FindByName(ctx context.Context, name string) (*entity.Role, error)
}
