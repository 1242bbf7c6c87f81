package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"employee-role-api/internal/converter"
	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/usecase"
	"employee-role-api/pkg/response"
	"employee-role-api/pkg/validator"

	"github.com/gorilla/mux"
)

const (
	defaultPage = 0
	defaultSize = 3
)

type EmployeeHandler struct {
	employeeUsecase usecase.EmployeeUsecase
	validator       *validator.CustomValidator
}

func NewEmployeeHandler(employeeUsecase usecase.EmployeeUsecase, validator *validator.CustomValidator) *EmployeeHandler {
	return &EmployeeHandler{
		employeeUsecase: employeeUsecase,
		validator:       validator,
	}
}

// ListEmployees handles GET /api/v1/employees?name=&page=&size=&sort=.
// An empty page answers 204.
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := intParam(query.Get("page"), defaultPage)
	if err != nil {
		response.BadRequest(w, "page must be an integer")
		return
	}
	size, err := intParam(query.Get("size"), defaultSize)
	if err != nil {
		response.BadRequest(w, "size must be an integer")
		return
	}

	result, err := h.employeeUsecase.ListEmployees(r.Context(), &dto.ListEmployeesRequest{
		Name: query.Get("name"),
		Page: page,
		Size: size,
		Sort: query["sort"],
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidPagination), errors.Is(err, usecase.ErrInvalidSortField):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to get employees")
		}
		return
	}

	if len(result.Employees) == 0 {
		response.NoContent(w)
		return
	}

	response.OK(w, converter.EmployeePageToResponse(result))
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := parseID(w, r)
	if !ok {
		return
	}

	employee, err := h.employeeUsecase.GetEmployee(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, usecase.ErrEmployeeNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get employee")
		return
	}

	response.OK(w, converter.EmployeeToResponse(employee))
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	employee, err := h.employeeUsecase.CreateEmployee(r.Context(), &req)
	if err != nil {
		h.writeMutationError(w, err, "Failed to create employee")
		return
	}

	response.Created(w, converter.EmployeeToResponse(employee))
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	employee, err := h.employeeUsecase.UpdateEmployee(r.Context(), employeeID, &req)
	if err != nil {
		h.writeMutationError(w, err, "Failed to update employee")
		return
	}

	response.OK(w, converter.EmployeeToResponse(employee))
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := parseID(w, r)
	if !ok {
		return
	}

	message, err := h.employeeUsecase.DeleteEmployee(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, usecase.ErrEmployeeNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to delete employee")
		return
	}

	response.Message(w, message)
}

func (h *EmployeeHandler) writeMutationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrEmployeeNotFound), errors.Is(err, usecase.ErrRoleNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrEmployeeNameExists):
		response.Conflict(w, "Employee name already exists")
	case errors.Is(err, usecase.ErrPasswordTooLong):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(w, "Invalid employee ID")
		return 0, false
	}
	return uint(id), true
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
