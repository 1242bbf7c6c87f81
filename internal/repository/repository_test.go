package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"employee-role-api/internal/domain/entity"
	"employee-role-api/internal/infrastructure/database"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("employees"),
		postgres.WithUsername("employee"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(connString)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, database.RunMigrations(db))
	// a second run finds nothing to apply
	require.NoError(t, database.RunMigrations(db))

	return db
}

func createRoles(t *testing.T, roles *roleRepository, names ...string) []entity.Role {
	t.Helper()
	created := make([]entity.Role, 0, len(names))
	for _, name := range names {
		role := &entity.Role{Name: name}
		require.NoError(t, roles.Create(context.Background(), role))
		created = append(created, *role)
	}
	return created
}

func TestEmployeeRepository(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	employees := NewEmployeeRepository(db)
	roles := &roleRepository{db: db}

	seeded := createRoles(t, roles, entity.RoleEngineer, entity.RoleManager)

	t.Run("create and find", func(t *testing.T) {
		employee := &entity.Employee{
			Name:         "TESTENGG",
			Salary:       1000,
			Department:   "DEVELOPMENT",
			PasswordHash: "$2a$04$hash",
			Roles:        []entity.Role{seeded[0]},
		}
		require.NoError(t, employees.Create(ctx, employee))
		assert.NotZero(t, employee.ID)

		byID, err := employees.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, []string{entity.RoleEngineer}, byID.RoleNames())

		byName, err := employees.FindByName(ctx, "TESTENGG")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, employee.ID, byName.ID)

		missing, err := employees.FindByName(ctx, "NOBODY")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("duplicate name is a unique violation", func(t *testing.T) {
		err := employees.Create(ctx, &entity.Employee{Name: "TESTENGG", Salary: 1, PasswordHash: "x"})
		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, "23505", pgErr.Code)
		assert.Contains(t, pgErr.ConstraintName, "employee_name")
	})

	t.Run("add role is idempotent", func(t *testing.T) {
		employee, err := employees.FindByName(ctx, "TESTENGG")
		require.NoError(t, err)

		require.NoError(t, employees.AddRole(ctx, employee.ID, seeded[1].ID))
		require.NoError(t, employees.AddRole(ctx, employee.ID, seeded[1].ID))

		reloaded, err := employees.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{entity.RoleEngineer, entity.RoleManager}, reloaded.RoleNames())
	})

	t.Run("update replaces columns and roles", func(t *testing.T) {
		employee, err := employees.FindByName(ctx, "TESTENGG")
		require.NoError(t, err)

		employee.Salary = 2500
		employee.Department = "QA"
		employee.Roles = []entity.Role{seeded[1]}
		require.NoError(t, employees.Update(ctx, employee))

		reloaded, err := employees.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, 2500, reloaded.Salary)
		assert.Equal(t, "QA", reloaded.Department)
		assert.Equal(t, []string{entity.RoleManager}, reloaded.RoleNames())
	})

	t.Run("delete", func(t *testing.T) {
		employee := &entity.Employee{Name: "TEMP", Salary: 1, PasswordHash: "x", Roles: []entity.Role{seeded[0]}}
		require.NoError(t, employees.Create(ctx, employee))

		affected, err := employees.Delete(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		affected, err = employees.Delete(ctx, employee.ID)
		require.NoError(t, err)
		assert.Zero(t, affected)

		gone, err := employees.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestEmployeeRepository_FindAll(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	employees := NewEmployeeRepository(db)

	for _, e := range []entity.Employee{
		{Name: "ALPHA", Salary: 300, Department: "DEV"},
		{Name: "BRAVO", Salary: 100, Department: "DEV"},
		{Name: "CHARLIE", Salary: 200, Department: "OPS"},
		{Name: "DELTA", Salary: 100, Department: "OPS"},
		{Name: "ECH_O", Salary: 500, Department: "DEV"},
	} {
		e := e
		e.PasswordHash = "x"
		require.NoError(t, employees.Create(ctx, &e))
	}

	found, total, err := employees.FindAll(ctx, entity.EmployeeFilter{
		Page: 0,
		Size: 3,
		Orders: []entity.SortOrder{
			{Field: "employee_salary", Direction: entity.SortAsc},
			{Field: "employee_name", Direction: entity.SortDesc},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, found, 3)
	assert.Equal(t, "DELTA", found[0].Name)
	assert.Equal(t, "BRAVO", found[1].Name)
	assert.Equal(t, "CHARLIE", found[2].Name)

	found, total, err = employees.FindAll(ctx, entity.EmployeeFilter{
		Name:   "HA",
		Page:   0,
		Size:   10,
		Orders: []entity.SortOrder{{Field: "id", Direction: entity.SortDesc}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, found, 2)
	assert.Equal(t, "CHARLIE", found[0].Name)

	// LIKE wildcards in the filter are matched literally
	_, total, err = employees.FindAll(ctx, entity.EmployeeFilter{
		Name:   "_",
		Page:   0,
		Size:   10,
		Orders: []entity.SortOrder{{Field: "id", Direction: entity.SortAsc}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	found, total, err = employees.FindAll(ctx, entity.EmployeeFilter{
		Page:   5,
		Size:   3,
		Orders: []entity.SortOrder{{Field: "id", Direction: entity.SortAsc}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, found)
}

func TestRoleRepository(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	roles := NewRoleRepository(db)

	role := &entity.Role{Name: entity.RoleTeamLeader}
	require.NoError(t, roles.Create(ctx, role))
	assert.NotZero(t, role.ID)

	byName, err := roles.FindByName(ctx, entity.RoleTeamLeader)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, role.ID, byName.ID)

	byID, err := roles.FindByID(ctx, role.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := roles.FindByID(ctx, role.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = roles.Create(ctx, &entity.Role{Name: entity.RoleTeamLeader})
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)
}

func TestAuditLogRepository(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	auditLogs := NewAuditLogRepository(db)

	for _, action := range []string{entity.AuditActionRoleCreate, entity.AuditActionEmployeeCreate} {
		require.NoError(t, auditLogs.Create(ctx, &entity.AuditLog{
			Actor:    "TESTMNG",
			Action:   action,
			Metadata: entity.JSON{"entity_id": "1"},
		}))
	}

	logs, total, err := auditLogs.FindAll(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionEmployeeCreate, logs[0].Action)
	assert.Equal(t, "1", logs[0].Metadata["entity_id"])
	assert.False(t, logs[0].CreatedAt.IsZero())

	found, err := auditLogs.FindByID(ctx, logs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "TESTMNG", found.Actor)

	missing, err := auditLogs.FindByID(ctx, logs[0].ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
