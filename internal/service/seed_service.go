package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/domain/entity"
	"employee-role-api/internal/usecase"

	"github.com/sirupsen/logrus"
)

const (
	seedTimeout    = 30 * time.Second
	seedSalary     = 1000
	seedDepartment = "DEVELOPMENT"
	seedPassword   = "1234"
)

// SeedRoles are created on first start.
var SeedRoles = []string{
	entity.RoleEngineer,
	entity.RoleProjectLeader,
	entity.RoleTeamLeader,
	entity.RoleManager,
}

// SeedEmployees maps each demo employee to the role it holds.
var SeedEmployees = []struct {
	Name string
	Role string
}{
	{Name: "TESTENGG", Role: entity.RoleEngineer},
	{Name: "TESTPL", Role: entity.RoleProjectLeader},
	{Name: "TESTTL", Role: entity.RoleTeamLeader},
	{Name: "TESTMNG", Role: entity.RoleManager},
}

// SeedService creates the default roles and demo employees. Rows that
// already exist are left untouched, so running it twice is harmless.
type SeedService struct {
	log             *logrus.Logger
	employeeUsecase usecase.EmployeeUsecase
}

func NewSeedService(log *logrus.Logger, employeeUsecase usecase.EmployeeUsecase) *SeedService {
	return &SeedService{
		log:             log,
		employeeUsecase: employeeUsecase,
	}
}

// SeedOnStartup runs the seed under its own timeout.
func (s *SeedService) SeedOnStartup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	start := time.Now()
	created := 0

	for _, name := range SeedRoles {
		_, err := s.employeeUsecase.CreateRole(ctx, &dto.CreateRoleRequest{Name: name})
		switch {
		case err == nil:
			created++
		case errors.Is(err, usecase.ErrRoleNameExists):
		default:
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	for _, seed := range SeedEmployees {
		salary := seedSalary
		_, err := s.employeeUsecase.CreateEmployee(ctx, &dto.CreateEmployeeRequest{
			Name:       seed.Name,
			Salary:     &salary,
			Department: seedDepartment,
			Password:   seedPassword,
			Roles:      []dto.RoleRef{{Name: seed.Role}},
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, usecase.ErrEmployeeNameExists):
		default:
			return fmt.Errorf("seed employee %s: %w", seed.Name, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"created":  created,
		"duration": time.Since(start).String(),
	}).Info("Seed data ensured")

	return nil
}
