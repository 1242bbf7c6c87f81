package repository

import (
	"context"
	"errors"
	"strings"

	"employee-role-api/internal/domain/entity"
	domainRepo "employee-role-api/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) domainRepo.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	// Roles already exist; only the join rows are written.
	return r.db.WithContext(ctx).Omit("Roles.*").Create(employee).Error
}

func (r *employeeRepository) FindByID(ctx context.Context, id uint) (*entity.Employee, error) {
	var employee entity.Employee
	err := r.db.WithContext(ctx).Preload("Roles", orderRolesByID).Where("id = ?", id).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindByName(ctx context.Context, name string) (*entity.Employee, error) {
	var employee entity.Employee
	err := r.db.WithContext(ctx).Preload("Roles", orderRolesByID).Where("employee_name = ?", name).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindAll(ctx context.Context, filter entity.EmployeeFilter) ([]entity.Employee, int64, error) {
	var employees []entity.Employee
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Employee{}).Scopes(nameContaining(filter.Name)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Scopes(nameContaining(filter.Name)).Preload("Roles", orderRolesByID)
	for _, order := range filter.Orders {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: order.Field},
			Desc:   order.Direction == entity.SortDesc,
		})
	}

	if err := query.Limit(filter.Size).Offset(filter.Offset()).Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// Update writes the employee columns and replaces its role set with
// employee.Roles in one transaction.
func (r *employeeRepository) Update(ctx context.Context, employee *entity.Employee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(employee).Error; err != nil {
			return err
		}

		if err := tx.Where("employee_id = ?", employee.ID).Delete(&entity.EmployeeRole{}).Error; err != nil {
			return err
		}

		if len(employee.Roles) == 0 {
			return nil
		}

		links := make([]entity.EmployeeRole, 0, len(employee.Roles))
		for _, role := range employee.Roles {
			links = append(links, entity.EmployeeRole{EmployeeID: employee.ID, RoleID: role.ID})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

// AddRole links a role to an employee. Linking an already linked role is a no-op.
func (r *employeeRepository) AddRole(ctx context.Context, employeeID, roleID uint) error {
	link := &entity.EmployeeRole{EmployeeID: employeeID, RoleID: roleID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
}

func (r *employeeRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Employee{})
	return result.RowsAffected, result.Error
}

func nameContaining(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if name == "" {
			return db
		}
		return db.Where("employee_name LIKE ?", "%"+likeEscaper.Replace(name)+"%")
	}
}

func orderRolesByID(db *gorm.DB) *gorm.DB {
	return db.Order("roles.id")
}
