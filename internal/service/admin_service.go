package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lab-availability/config"
	"lab-availability/internal/dto"
	"lab-availability/internal/model"
	"lab-availability/internal/repository"
	pkgerrors "lab-availability/pkg/errors"
)

// ── 管理模块业务错误 ──

var (
	ErrInvalidTimeSlot  = errors.New("time_slot 不在允许的枚举取值内")
	ErrInvalidDay       = errors.New("day 不在允许的枚举取值内")
	ErrNoFieldsProvided = errors.New("没有提供任何待更新的字段")
)

// AdminService 排课管理业务接口 — 所有写操作先经过校验层
type AdminService interface {
	// ListEntries 全部记录，按 (location, day, time_slot) 升序
	ListEntries(ctx context.Context) ([]dto.EntryResponse, error)
	// CreateEntry 创建记录；时间段/星期枚举校验（按配置开关）+ 三元组唯一性校验
	CreateEntry(ctx context.Context, req *dto.CreateEntryRequest) (*dto.EntryResponse, error)
	// UpdateEntry 部分更新：仅应用非空字段；空补丁拒绝
	UpdateEntry(ctx context.Context, id uint, req *dto.UpdateEntryRequest) (*dto.EntryResponse, error)
	// DeleteEntry 按 ID 永久删除
	DeleteEntry(ctx context.Context, id uint) error
	// ReloadSnapshot 重新加载数据快照（仅表格后端）
	ReloadSnapshot(ctx context.Context) (int, error)
}

type adminService struct {
	repo    *repository.Repository
	rules   *config.ValidationConfig
	slotSet map[string]struct{}
	daySet  map[string]struct{}
	logger  *zap.Logger
}

// NewAdminService 创建 AdminService 实例
// 枚举校验规则来自配置：两个历史版本的校验严格程度不同，由部署方选择
func NewAdminService(repo *repository.Repository, rules *config.ValidationConfig, logger *zap.Logger) AdminService {
	slotSet := make(map[string]struct{}, len(rules.TimeSlots))
	for _, s := range rules.TimeSlots {
		slotSet[s] = struct{}{}
	}
	daySet := make(map[string]struct{}, len(rules.Days))
	for _, d := range rules.Days {
		daySet[d] = struct{}{}
	}
	return &adminService{
		repo:    repo,
		rules:   rules,
		slotSet: slotSet,
		daySet:  daySet,
		logger:  logger,
	}
}

// ────────────────────── ListEntries ──────────────────────

func (s *adminService) ListEntries(ctx context.Context) ([]dto.EntryResponse, error) {
	entries, err := s.repo.Schedule.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询全部排课记录失败", zap.Error(err))
		return nil, err
	}

	sortByTriple(entries)
	return toEntryResponses(entries), nil
}

// ────────────────────── CreateEntry ──────────────────────

func (s *adminService) CreateEntry(ctx context.Context, req *dto.CreateEntryRequest) (*dto.EntryResponse, error) {
	if err := s.validateTimeSlot(req.TimeSlot); err != nil {
		return nil, err
	}
	if err := s.validateDay(req.Day); err != nil {
		return nil, err
	}

	// 预检查三元组唯一性。并发创建仍可能同时通过这里，
	// 最终由存储层唯一索引在提交点兜底（同样翻译为 ErrDuplicateEntry）。
	if _, err := s.repo.Schedule.GetByTriple(ctx, req.Location, req.Day, req.TimeSlot); err == nil {
		return nil, pkgerrors.ErrDuplicateEntry
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("唯一性预检查失败", zap.Error(err))
		return nil, err
	}

	entry := &model.ScheduleEntry{
		Location: req.Location,
		Day:      req.Day,
		TimeSlot: req.TimeSlot,
		Faculty:  req.Faculty,
		Batch:    req.Batch,
		Capacity: req.Capacity,
	}

	if err := s.repo.Schedule.Insert(ctx, entry); err != nil {
		if !errors.Is(err, pkgerrors.ErrDuplicateEntry) && !errors.Is(err, pkgerrors.ErrStoreReadOnly) {
			s.logger.Error("创建排课记录失败", zap.Error(err))
		}
		return nil, err
	}

	resp := toEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── UpdateEntry ──────────────────────

func (s *adminService) UpdateEntry(ctx context.Context, id uint, req *dto.UpdateEntryRequest) (*dto.EntryResponse, error) {
	fields := make(map[string]interface{})
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Day != nil {
		if err := s.validateDay(*req.Day); err != nil {
			return nil, err
		}
		fields["day"] = *req.Day
	}
	if req.TimeSlot != nil {
		if err := s.validateTimeSlot(*req.TimeSlot); err != nil {
			return nil, err
		}
		fields["time_slot"] = *req.TimeSlot
	}
	if req.Faculty != nil {
		fields["faculty"] = *req.Faculty
	}
	if req.Batch != nil {
		fields["batch"] = *req.Batch
	}
	if req.Capacity != nil {
		fields["capacity"] = *req.Capacity
	}

	if len(fields) == 0 {
		return nil, ErrNoFieldsProvided
	}

	// 不对补丁后的三元组做应用层预检查（既有行为保留）；
	// 若与现有记录冲突，由唯一索引在提交点拒绝
	entry, err := s.repo.Schedule.UpdateByID(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		if !errors.Is(err, pkgerrors.ErrDuplicateEntry) && !errors.Is(err, pkgerrors.ErrStoreReadOnly) {
			s.logger.Error("更新排课记录失败", zap.Uint("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := toEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── DeleteEntry ──────────────────────

func (s *adminService) DeleteEntry(ctx context.Context, id uint) error {
	if _, err := s.repo.Schedule.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		if !errors.Is(err, pkgerrors.ErrStoreReadOnly) {
			s.logger.Error("删除排课记录失败", zap.Uint("id", id), zap.Error(err))
		}
		return err
	}
	return nil
}

// ────────────────────── ReloadSnapshot ──────────────────────

func (s *adminService) ReloadSnapshot(ctx context.Context) (int, error) {
	n, err := s.repo.Schedule.Reload(ctx)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrReloadUnsupported) {
			s.logger.Error("重新加载快照失败", zap.Error(err))
		}
		return 0, err
	}
	s.logger.Info("快照重新加载完成", zap.Int("entries", n))
	return n, nil
}

// ── 校验规则 ──

func (s *adminService) validateTimeSlot(slot string) error {
	if !s.rules.EnforceTimeSlots {
		return nil
	}
	if _, ok := s.slotSet[slot]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTimeSlot, slot)
	}
	return nil
}

func (s *adminService) validateDay(day string) error {
	if !s.rules.EnforceDays {
		return nil
	}
	if _, ok := s.daySet[day]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return nil
}
