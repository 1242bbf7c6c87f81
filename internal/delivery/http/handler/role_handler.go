package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"employee-role-api/internal/converter"
	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/usecase"
	"employee-role-api/pkg/response"
	"employee-role-api/pkg/validator"
)

type RoleHandler struct {
	employeeUsecase usecase.EmployeeUsecase
	validator       *validator.CustomValidator
}

func NewRoleHandler(employeeUsecase usecase.EmployeeUsecase, validator *validator.CustomValidator) *RoleHandler {
	return &RoleHandler{
		employeeUsecase: employeeUsecase,
		validator:       validator,
	}
}

func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	role, err := h.employeeUsecase.CreateRole(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrRoleNameExists) {
			response.Conflict(w, "Role name already exists")
			return
		}
		response.InternalServerError(w, "Failed to create role")
		return
	}

	response.Created(w, converter.RoleToResponse(role))
}

// AddRoleToEmployee handles POST /api/v1/role/addtoemployee with {name, roleName}.
func (h *RoleHandler) AddRoleToEmployee(w http.ResponseWriter, r *http.Request) {
	var req dto.AddRoleToEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	message, err := h.employeeUsecase.AssignRole(r.Context(), req.Name, req.RoleName)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmployeeNotFound), errors.Is(err, usecase.ErrRoleNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to add role to employee")
		}
		return
	}

	response.Message(w, message)
}
