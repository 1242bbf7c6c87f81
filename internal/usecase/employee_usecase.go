package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"employee-role-api/internal/converter"
	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/domain/entity"
	"employee-role-api/internal/domain/repository"
	"employee-role-api/internal/infrastructure/metrics"
	"employee-role-api/pkg/hash"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const maxPageSize = 100

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrEmployeeNameExists = errors.New("employee name already exists")
	ErrRoleNameExists     = errors.New("role name already exists")
	ErrInvalidSortField   = errors.New("invalid sort field")
	ErrInvalidPagination  = errors.New("invalid pagination parameters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

type EmployeeUsecase interface {
	ListEmployees(ctx context.Context, req *dto.ListEmployeesRequest) (*entity.EmployeePage, error)
	GetEmployee(ctx context.Context, id uint) (*entity.Employee, error)
	GetEmployeeByName(ctx context.Context, name string) (*entity.Employee, error)
	CreateEmployee(ctx context.Context, req *dto.CreateEmployeeRequest) (*entity.Employee, error)
	UpdateEmployee(ctx context.Context, id uint, req *dto.UpdateEmployeeRequest) (*entity.Employee, error)
	DeleteEmployee(ctx context.Context, id uint) (string, error)
	CreateRole(ctx context.Context, req *dto.CreateRoleRequest) (*entity.Role, error)
	AssignRole(ctx context.Context, employeeName, roleName string) (string, error)
}

// AuditRecorder appends audit entries for completed mutations. Failures are
// logged by the recorder and never undo the mutation.
type AuditRecorder interface {
	LogCreate(ctx context.Context, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, action string, entityName string, entityID string, oldValue interface{}) error
}

type employeeUsecase struct {
	log          *logrus.Logger
	employeeRepo repository.EmployeeRepository
	roleRepo     repository.RoleRepository
	cache        repository.EmployeeCache
	hasher       hash.PasswordHasher
	audit        AuditRecorder

	// Per-employee mutex held across a cache fill and across a write plus
	// its cache refresh or eviction.
	employeeMu sync.Map // map[uint]*sync.Mutex
}

func NewEmployeeUsecase(
	log *logrus.Logger,
	employeeRepo repository.EmployeeRepository,
	roleRepo repository.RoleRepository,
	cache repository.EmployeeCache,
	hasher hash.PasswordHasher,
	audit AuditRecorder,
) EmployeeUsecase {
	return &employeeUsecase{
		log:          log,
		employeeRepo: employeeRepo,
		roleRepo:     roleRepo,
		cache:        cache,
		hasher:       hasher,
		audit:        audit,
	}
}

func (u *employeeUsecase) ListEmployees(ctx context.Context, req *dto.ListEmployeesRequest) (*entity.EmployeePage, error) {
	if req.Page < 0 || req.Size < 1 || req.Size > maxPageSize {
		return nil, fmt.Errorf("%w: page must be >= 0 and size between 1 and %d", ErrInvalidPagination, maxPageSize)
	}

	orders, err := ParseSort(req.Sort)
	if err != nil {
		return nil, err
	}

	filter := entity.EmployeeFilter{
		Name:   req.Name,
		Page:   req.Page,
		Size:   req.Size,
		Orders: orders,
	}

	employees, total, err := u.employeeRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to retrieve employees: %+v", err)
		return nil, fmt.Errorf("retrieve employees: %w", err)
	}

	totalPages := int(total) / req.Size
	if int(total)%req.Size > 0 {
		totalPages++
	}

	return &entity.EmployeePage{
		Employees:  employees,
		Page:       req.Page,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GetEmployee reads through the employee cache. Cache failures degrade to a
// store read.
func (u *employeeUsecase) GetEmployee(ctx context.Context, id uint) (*entity.Employee, error) {
	cached, found, err := u.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.EmployeeCacheLookupsTotal.WithLabelValues("error").Inc()
		u.log.Warnf("Failed to read employee %d from cache: %+v", id, err)
	case found:
		metrics.EmployeeCacheLookupsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.EmployeeCacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	unlock := u.lockEmployee(id)
	defer unlock()

	employee, err := u.employeeRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find employee by ID: %+v", err)
		return nil, err
	}
	if employee == nil {
		return nil, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, id)
	}

	if err := u.cache.Set(ctx, employee); err != nil {
		u.log.Warnf("Failed to cache employee %d: %+v", id, err)
	}

	return employee, nil
}

func (u *employeeUsecase) GetEmployeeByName(ctx context.Context, name string) (*entity.Employee, error) {
	employee, err := u.employeeRepo.FindByName(ctx, name)
	if err != nil {
		u.log.Warnf("Failed to find employee by name: %+v", err)
		return nil, err
	}
	if employee == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, name)
	}
	return employee, nil
}

func (u *employeeUsecase) CreateEmployee(ctx context.Context, req *dto.CreateEmployeeRequest) (*entity.Employee, error) {
	u.log.Infof("Saving new employee %s to the database", req.Name)

	roles, err := u.resolveRoles(ctx, req.Roles)
	if err != nil {
		return nil, err
	}

	passwordHash, err := u.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	employee := &entity.Employee{
		Name:         req.Name,
		Salary:       *req.Salary,
		Department:   req.Department,
		PasswordHash: passwordHash,
		Roles:        roles,
	}

	if err := u.employeeRepo.Create(ctx, employee); err != nil {
		if isDuplicateKeyError(err, "employee_name") {
			return nil, ErrEmployeeNameExists
		}
		u.log.Warnf("Failed to create employee: %+v", err)
		return nil, err
	}

	_ = u.audit.LogCreate(ctx, entity.AuditActionEmployeeCreate, "employee", idString(employee.ID), converter.EmployeeToResponse(employee))

	return employee, nil
}

// UpdateEmployee overwrites the employee and re-hashes the supplied password
// even when it is unchanged. The cache entry is refreshed from the stored row.
func (u *employeeUsecase) UpdateEmployee(ctx context.Context, id uint, req *dto.UpdateEmployeeRequest) (*entity.Employee, error) {
	unlock := u.lockEmployee(id)
	defer unlock()

	employee, err := u.employeeRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find employee by ID: %+v", err)
		return nil, err
	}
	if employee == nil {
		return nil, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, id)
	}
	before := converter.EmployeeToResponse(employee)

	if req.Roles != nil {
		roles, err := u.resolveRoles(ctx, req.Roles)
		if err != nil {
			return nil, err
		}
		employee.Roles = roles
	}

	passwordHash, err := u.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	employee.Name = req.Name
	employee.Salary = *req.Salary
	employee.Department = req.Department
	employee.PasswordHash = passwordHash

	if err := u.employeeRepo.Update(ctx, employee); err != nil {
		if isDuplicateKeyError(err, "employee_name") {
			return nil, ErrEmployeeNameExists
		}
		u.log.Warnf("Failed to update employee: %+v", err)
		return nil, err
	}

	stored, err := u.employeeRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to reload employee %d: %+v", id, err)
		return nil, u.evictOrFail(ctx, id, err)
	}
	if stored == nil {
		return nil, u.evictOrFail(ctx, id, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, id))
	}

	if err := u.cache.Set(ctx, stored); err != nil {
		u.log.Warnf("Failed to refresh cached employee %d: %+v", id, err)
		if err := u.evictOrFail(ctx, id, nil); err != nil {
			return nil, err
		}
	}

	_ = u.audit.LogUpdate(ctx, entity.AuditActionEmployeeUpdate, "employee", idString(id), before, converter.EmployeeToResponse(stored))

	return stored, nil
}

// DeleteEmployee removes the employee and evicts its cache entry before
// acknowledging.
func (u *employeeUsecase) DeleteEmployee(ctx context.Context, id uint) (string, error) {
	unlock := u.lockEmployee(id)
	defer unlock()

	existing, err := u.employeeRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find employee by ID: %+v", err)
		return "", err
	}

	var affectedRows int64
	if existing != nil {
		affectedRows, err = u.employeeRepo.Delete(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to delete employee: %+v", err)
			return "", err
		}
	}

	if err := u.evictOrFail(ctx, id, nil); err != nil {
		return "", err
	}

	if affectedRows == 0 {
		return "", fmt.Errorf("%w: id %d", ErrEmployeeNotFound, id)
	}

	_ = u.audit.LogDelete(ctx, entity.AuditActionEmployeeDelete, "employee", idString(id), converter.EmployeeToResponse(existing))

	return fmt.Sprintf("Employee %d deleted", id), nil
}

func (u *employeeUsecase) CreateRole(ctx context.Context, req *dto.CreateRoleRequest) (*entity.Role, error) {
	u.log.Infof("Saving new role %s to the database", req.Name)

	role := &entity.Role{Name: req.Name}
	if err := u.roleRepo.Create(ctx, role); err != nil {
		if isDuplicateKeyError(err, "roles_name") {
			return nil, ErrRoleNameExists
		}
		u.log.Warnf("Failed to create role: %+v", err)
		return nil, err
	}

	_ = u.audit.LogCreate(ctx, entity.AuditActionRoleCreate, "role", idString(role.ID), converter.RoleToResponse(role))

	return role, nil
}

// AssignRole adds a role to an employee's role set. Assigning a role the
// employee already holds succeeds without writing.
func (u *employeeUsecase) AssignRole(ctx context.Context, employeeName, roleName string) (string, error) {
	u.log.Infof("Adding role %s to employee %s", roleName, employeeName)

	employee, err := u.GetEmployeeByName(ctx, employeeName)
	if err != nil {
		return "", err
	}

	role, err := u.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		u.log.Warnf("Failed to find role by name: %+v", err)
		return "", err
	}
	if role == nil {
		return "", fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
	}

	message := fmt.Sprintf("Role %s added to employee %s", roleName, employeeName)
	if employee.HasRole(role.ID) {
		return message, nil
	}

	unlock := u.lockEmployee(employee.ID)
	defer unlock()

	if err := u.employeeRepo.AddRole(ctx, employee.ID, role.ID); err != nil {
		u.log.Warnf("Failed to add role to employee: %+v", err)
		return "", err
	}

	if err := u.evictOrFail(ctx, employee.ID, nil); err != nil {
		return "", err
	}

	before := employee.RoleNames()
	after := append(employee.RoleNames(), role.Name)
	_ = u.audit.LogUpdate(ctx, entity.AuditActionRoleAssign, "employee", idString(employee.ID),
		map[string]interface{}{"roles": before},
		map[string]interface{}{"roles": after})

	return message, nil
}

// resolveRoles looks every reference up in the store and drops duplicates.
func (u *employeeUsecase) resolveRoles(ctx context.Context, refs []dto.RoleRef) ([]entity.Role, error) {
	roles := make([]entity.Role, 0, len(refs))
	seen := make(map[uint]struct{}, len(refs))

	for _, ref := range refs {
		var role *entity.Role
		var err error
		if ref.ID != 0 {
			role, err = u.roleRepo.FindByID(ctx, ref.ID)
		} else {
			role, err = u.roleRepo.FindByName(ctx, ref.Name)
		}
		if err != nil {
			u.log.Warnf("Failed to resolve role: %+v", err)
			return nil, err
		}
		if role == nil {
			if ref.ID != 0 {
				return nil, fmt.Errorf("%w: id %d", ErrRoleNotFound, ref.ID)
			}
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, ref.Name)
		}

		if _, dup := seen[role.ID]; dup {
			continue
		}
		seen[role.ID] = struct{}{}
		roles = append(roles, *role)
	}

	return roles, nil
}

// lockEmployee serializes work on one employee id so a read-through fill
// never stores a row older than a write that has already completed.
func (u *employeeUsecase) lockEmployee(id uint) func() {
	value, _ := u.employeeMu.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (u *employeeUsecase) hashPassword(password string) (string, error) {
	passwordHash, err := u.hasher.Hash(password)
	if err != nil {
		if hash.IsTooLong(err) {
			return "", ErrPasswordTooLong
		}
		u.log.Warnf("Failed to hash password: %+v", err)
		return "", err
	}
	return passwordHash, nil
}

// evictOrFail removes the cache entry for id and returns cause. A failed
// eviction takes precedence over cause since the cache may now be stale.
func (u *employeeUsecase) evictOrFail(ctx context.Context, id uint, cause error) error {
	if err := u.cache.Delete(ctx, id); err != nil {
		u.log.Errorf("Failed to evict cached employee %d: %+v", id, err)
		return fmt.Errorf("evict cached employee %d: %w", id, err)
	}
	return cause
}

// ParseSort turns the repeatable sort query values into sort orders.
// Values are "field,direction" pairs; the legacy form ["field", "direction"]
// is accepted when the first value has no comma. Direction is "asc" or
// "desc" (case-sensitive); anything else sorts ascending.
func ParseSort(values []string) ([]entity.SortOrder, error) {
	if len(values) == 0 {
		return []entity.SortOrder{{Field: "id", Direction: entity.SortDesc}}, nil
	}

	var pairs [][2]string
	if strings.Contains(values[0], ",") {
		for _, value := range values {
			field, direction, _ := strings.Cut(value, ",")
			pairs = append(pairs, [2]string{field, direction})
		}
	} else {
		pair := [2]string{values[0], ""}
		if len(values) > 1 {
			pair[1] = values[1]
		}
		pairs = append(pairs, pair)
	}

	orders := make([]entity.SortOrder, 0, len(pairs))
	for _, pair := range pairs {
		field := strings.TrimSpace(pair[0])
		column, ok := entity.EmployeeSortColumns[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
		}
		orders = append(orders, entity.SortOrder{Field: column, Direction: sortDirection(strings.TrimSpace(pair[1]))})
	}

	return orders, nil
}

func sortDirection(direction string) entity.SortDirection {
	if direction == "desc" {
		return entity.SortDesc
	}
	return entity.SortAsc
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
