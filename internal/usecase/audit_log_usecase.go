package usecase

import (
	"context"
	"errors"
	"fmt"

	"employee-role-api/internal/domain/entity"
	"employee-role-api/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, page, size int) (*entity.AuditLogPage, error)
	GetAuditLog(ctx context.Context, id int64) (*entity.AuditLog, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(log *logrus.Logger, auditLogRepo repository.AuditLogRepository) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, page, size int) (*entity.AuditLogPage, error) {
	if page < 0 || size < 1 || size > maxPageSize {
		return nil, fmt.Errorf("%w: page must be >= 0 and size between 1 and %d", ErrInvalidPagination, maxPageSize)
	}

	logs, total, err := u.auditLogRepo.FindAll(ctx, size, page*size)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &entity.AuditLogPage{
		Logs:       logs,
		Page:       page,
		TotalItems: total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*entity.AuditLog, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, fmt.Errorf("%w: id %d", ErrAuditLogNotFound, id)
	}

	return auditLog, nil
}
