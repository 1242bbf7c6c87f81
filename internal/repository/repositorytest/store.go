// Package repositorytest provides an in-memory credential store for tests
// above the repository layer. It mirrors the unique constraints of the
// postgres schema and reports violations as *pgconn.PgError.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"employee-role-api/internal/domain/entity"
	"employee-role-api/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

type storedEmployee struct {
	employee entity.Employee
	roleIDs  []uint
}

// Store keeps employees, roles and audit entries in memory.
type Store struct {
	mu         sync.Mutex
	employees  map[uint]*storedEmployee
	roles      map[uint]entity.Role
	auditLogs  []entity.AuditLog
	nextEmpID  uint
	nextRoleID uint
	writes     int
}

func NewStore() *Store {
	return &Store{
		employees:  make(map[uint]*storedEmployee),
		roles:      make(map[uint]entity.Role),
		nextEmpID:  1,
		nextRoleID: 1,
	}
}

func (s *Store) Employees() repository.EmployeeRepository {
	return &employeeRepository{store: s}
}

func (s *Store) Roles() repository.RoleRepository {
	return &roleRepository{store: s}
}

func (s *Store) AuditLogs() repository.AuditLogRepository {
	return &auditLogRepository{store: s}
}

// WriteCount returns the number of employee and role mutations that changed
// state, so a test can assert that a rejected operation wrote nothing. Audit
// appends are not counted.
func (s *Store) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"" + constraint + "\"",
		ConstraintName: constraint,
	}
}

func (s *Store) loadLocked(stored *storedEmployee) *entity.Employee {
	employee := stored.employee
	ids := append([]uint(nil), stored.roleIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	employee.Roles = make([]entity.Role, 0, len(ids))
	for _, id := range ids {
		employee.Roles = append(employee.Roles, s.roles[id])
	}
	return &employee
}

func (s *Store) nameTakenLocked(name string, exceptID uint) bool {
	for id, stored := range s.employees {
		if id != exceptID && stored.employee.Name == name {
			return true
		}
	}
	return false
}

func roleIDs(roles []entity.Role) []uint {
	ids := make([]uint, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	return ids
}

type employeeRepository struct {
	store *Store
}

func (r *employeeRepository) Create(_ context.Context, employee *entity.Employee) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(employee.Name, 0) {
		return uniqueViolation("uni_employees_employee_name")
	}

	now := time.Now()
	employee.ID = s.nextEmpID
	employee.CreatedAt = now
	employee.UpdatedAt = now
	s.nextEmpID++

	stored := &storedEmployee{employee: *employee, roleIDs: roleIDs(employee.Roles)}
	stored.employee.Roles = nil
	s.employees[employee.ID] = stored
	s.writes++
	return nil
}

func (r *employeeRepository) FindByID(_ context.Context, id uint) (*entity.Employee, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return s.loadLocked(stored), nil
}

func (r *employeeRepository) FindByName(_ context.Context, name string) (*entity.Employee, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stored := range s.employees {
		if stored.employee.Name == name {
			return s.loadLocked(stored), nil
		}
	}
	return nil, nil
}

func (r *employeeRepository) FindAll(_ context.Context, filter entity.EmployeeFilter) ([]entity.Employee, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]entity.Employee, 0, len(s.employees))
	for _, stored := range s.employees {
		if filter.Name != "" && !strings.Contains(stored.employee.Name, filter.Name) {
			continue
		}
		matched = append(matched, *s.loadLocked(stored))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, order := range filter.Orders {
			cmp := compareColumn(&matched[i], &matched[j], order.Field)
			if cmp == 0 {
				continue
			}
			if order.Direction == entity.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return []entity.Employee{}, total, nil
	}
	end := start + filter.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func compareColumn(a, b *entity.Employee, column string) int {
	switch column {
	case "employee_name":
		return strings.Compare(a.Name, b.Name)
	case "employee_salary":
		return a.Salary - b.Salary
	case "department":
		return strings.Compare(a.Department, b.Department)
	default:
		return int(a.ID) - int(b.ID)
	}
}

func (r *employeeRepository) Update(_ context.Context, employee *entity.Employee) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.employees[employee.ID]
	if !ok {
		return nil
	}
	if s.nameTakenLocked(employee.Name, employee.ID) {
		return uniqueViolation("uni_employees_employee_name")
	}

	employee.UpdatedAt = time.Now()
	stored.employee = *employee
	stored.employee.Roles = nil
	stored.roleIDs = roleIDs(employee.Roles)
	s.writes++
	return nil
}

func (r *employeeRepository) AddRole(_ context.Context, employeeID, roleID uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.employees[employeeID]
	if !ok {
		return nil
	}
	for _, id := range stored.roleIDs {
		if id == roleID {
			return nil
		}
	}
	stored.roleIDs = append(stored.roleIDs, roleID)
	s.writes++
	return nil
}

func (r *employeeRepository) Delete(_ context.Context, id uint) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return 0, nil
	}
	delete(s.employees, id)
	s.writes++
	return 1, nil
}

type roleRepository struct {
	store *Store
}

func (r *roleRepository) Create(_ context.Context, role *entity.Role) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.Name == role.Name {
			return uniqueViolation("uni_roles_name")
		}
	}

	role.ID = s.nextRoleID
	s.nextRoleID++
	s.roles[role.ID] = *role
	s.writes++
	return nil
}

func (r *roleRepository) FindByID(_ context.Context, id uint) (*entity.Role, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r *roleRepository) FindByName(_ context.Context, name string) (*entity.Role, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, role := range s.roles {
		if role.Name == name {
			found := role
			return &found, nil
		}
	}
	return nil, nil
}

type auditLogRepository struct {
	store *Store
}

func (r *auditLogRepository) Create(_ context.Context, log *entity.AuditLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = int64(len(s.auditLogs)) + 1
	log.CreatedAt = time.Now()
	s.auditLogs = append(s.auditLogs, *log)
	return nil
}

func (r *auditLogRepository) FindAll(_ context.Context, limit, offset int) ([]entity.AuditLog, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int64(len(s.auditLogs))
	logs := make([]entity.AuditLog, 0, limit)
	for i := len(s.auditLogs) - 1 - offset; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, s.auditLogs[i])
	}
	return logs, total, nil
}

func (r *auditLogRepository) FindByID(_ context.Context, id int64) (*entity.AuditLog, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 || id > int64(len(s.auditLogs)) {
		return nil, nil
	}
	found := s.auditLogs[id-1]
	return &found, nil
}
