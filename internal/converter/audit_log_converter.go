package converter

import (
	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/domain/entity"
)

// AuditLogToResponse converts an AuditLog entity to its response DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:        log.ID,
		Actor:     log.Actor,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, *AuditLogToResponse(&logs[i]))
	}
	return responses
}

func AuditLogPageToResponse(page *entity.AuditLogPage) *dto.AuditLogListResponse {
	return &dto.AuditLogListResponse{
		Logs:        AuditLogsToResponses(page.Logs),
		CurrentPage: page.Page,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
	}
}
