package handler

import (
	"errors"
	"net/http"
	"strconv"

	"employee-role-api/internal/converter"
	"employee-role-api/internal/usecase"
	"employee-role-api/pkg/response"

	"github.com/gorilla/mux"
)

const defaultAuditPageSize = 20

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	auditLogID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || auditLogID < 1 {
		response.BadRequest(w, "Invalid audit log ID")
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditLogNotFound) {
			response.NotFound(w, "Audit log not found")
			return
		}
		response.InternalServerError(w, "Failed to get audit log")
		return
	}

	response.OK(w, converter.AuditLogToResponse(auditLog))
}

// GetAllAuditLogs handles GET /api/v1/audit-logs?page=&size=, newest first.
func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := intParam(query.Get("page"), defaultPage)
	if err != nil {
		response.BadRequest(w, "page must be an integer")
		return
	}
	size, err := intParam(query.Get("size"), defaultAuditPageSize)
	if err != nil {
		response.BadRequest(w, "size must be an integer")
		return
	}

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), page, size)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidPagination) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.OK(w, converter.AuditLogPageToResponse(auditLogs))
}
