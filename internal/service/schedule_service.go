package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lab-availability/internal/dto"
	"lab-availability/internal/model"
	"lab-availability/internal/repository"
)

// ── 查询模块业务错误 ──

var (
	ErrEntryNotFound = errors.New("排课记录不存在")
)

// ScheduleService 排课查询业务接口
// 所有操作都是对存储快照的纯投影/过滤，不修改任何状态；
// 排序在本层完成，保证结果与存储的枚举顺序无关。
type ScheduleService interface {
	// CheckAvailability 按唯一三元组点查；faculty == "Free" 视为空闲
	CheckAvailability(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	// ListLocations 全部不重复地点，字典序升序
	ListLocations(ctx context.Context) ([]string, error)
	// LocationsByCapacity 至少有一条记录 capacity >= threshold 的地点
	LocationsByCapacity(ctx context.Context, threshold int) ([]string, error)
	// LocationsByDay 指定星期有记录的地点；未知取值返回空集而非错误
	LocationsByDay(ctx context.Context, day string) ([]string, error)
	// LocationsByTimeSlot 指定时间段有记录的地点
	LocationsByTimeSlot(ctx context.Context, timeSlot string) ([]string, error)
	// ScheduleByFaculty faculty 精确匹配的全部记录，按 (day, time_slot) 升序；
	// facultyName == "Free" 返回全部空闲时段
	ScheduleByFaculty(ctx context.Context, facultyName string) ([]dto.EntryResponse, error)
	// FullTimetable 全部记录，按 (location, day, time_slot) 升序
	FullTimetable(ctx context.Context) ([]dto.EntryResponse, error)
	// Statistics 聚合统计
	Statistics(ctx context.Context) (*dto.StatsResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

// ────────────────────── CheckAvailability ──────────────────────

func (s *scheduleService) CheckAvailability(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	entry, err := s.repo.Schedule.GetByTriple(ctx, req.LocationName, req.Day, req.TimeSlot)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("可用性查询失败",
			zap.String("location", req.LocationName),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &dto.AvailabilityResponse{
		Location:  entry.Location,
		Day:       entry.Day,
		TimeSlot:  entry.TimeSlot,
		Available: entry.IsFree(),
		Faculty:   entry.Faculty,
		Batch:     entry.Batch,
		Capacity:  entry.Capacity,
	}

	if resp.Available {
		resp.Message = fmt.Sprintf("%s 在 %s 的 %s 空闲可用。", entry.Location, entry.Day, entry.TimeSlot)
	} else {
		batchInfo := ""
		if entry.Batch != nil && *entry.Batch != "" {
			batchInfo = fmt.Sprintf("（批次: %s）", *entry.Batch)
		}
		resp.Message = fmt.Sprintf("%s 在 %s 的 %s 由 %s%s 占用。",
			entry.Location, entry.Day, entry.TimeSlot, entry.Faculty, batchInfo)
	}

	return resp, nil
}

// ────────────────────── 地点集合查询 ──────────────────────

func (s *scheduleService) ListLocations(ctx context.Context) ([]string, error) {
	return s.distinctLocations(ctx, nil)
}

func (s *scheduleService) LocationsByCapacity(ctx context.Context, threshold int) ([]string, error) {
	return s.distinctLocations(ctx, &repository.EntryFilter{MinCapacity: &threshold})
}

func (s *scheduleService) LocationsByDay(ctx context.Context, day string) ([]string, error) {
	return s.distinctLocations(ctx, &repository.EntryFilter{Day: day})
}

func (s *scheduleService) LocationsByTimeSlot(ctx context.Context, timeSlot string) ([]string, error) {
	return s.distinctLocations(ctx, &repository.EntryFilter{TimeSlot: timeSlot})
}

// distinctLocations 按条件取记录并投影为去重、升序的地点序列
func (s *scheduleService) distinctLocations(ctx context.Context, filter *repository.EntryFilter) ([]string, error) {
	entries, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询地点集合失败", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	locations := make([]string, 0, len(entries))
	for i := range entries {
		if _, ok := seen[entries[i].Location]; ok {
			continue
		}
		seen[entries[i].Location] = struct{}{}
		locations = append(locations, entries[i].Location)
	}

	sort.Strings(locations)
	return locations, nil
}

// ────────────────────── ScheduleByFaculty ──────────────────────

func (s *scheduleService) ScheduleByFaculty(ctx context.Context, facultyName string) ([]dto.EntryResponse, error) {
	entries, err := s.repo.Schedule.List(ctx, &repository.EntryFilter{Faculty: facultyName})
	if err != nil {
		s.logger.Error("按教师查询失败", zap.String("faculty", facultyName), zap.Error(err))
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].TimeSlot < entries[j].TimeSlot
	})

	return toEntryResponses(entries), nil
}

// ────────────────────── FullTimetable ──────────────────────

func (s *scheduleService) FullTimetable(ctx context.Context) ([]dto.EntryResponse, error) {
	entries, err := s.repo.Schedule.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询完整时间表失败", zap.Error(err))
		return nil, err
	}

	sortByTriple(entries)
	return toEntryResponses(entries), nil
}

// ────────────────────── Statistics ──────────────────────

func (s *scheduleService) Statistics(ctx context.Context) (*dto.StatsResponse, error) {
	entries, err := s.repo.Schedule.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询统计数据失败", zap.Error(err))
		return nil, err
	}

	stats := &dto.StatsResponse{TotalEntries: len(entries)}

	locations := make(map[string]struct{})
	for i := range entries {
		locations[entries[i].Location] = struct{}{}
		if entries[i].IsFree() {
			stats.FreeSlots++
		} else {
			stats.OccupiedSlots++
		}
	}
	stats.TotalLocations = len(locations)

	// 占用率 = 已占用 / 总数 × 100，保留两位小数；总数为 0 时避免除零
	if stats.TotalEntries > 0 {
		rate := float64(stats.OccupiedSlots) / float64(stats.TotalEntries) * 100
		stats.UtilizationRate = math.Round(rate*100) / 100
	}

	return stats, nil
}

// ── 内部辅助方法 ──

// sortByTriple 按 (location, day, time_slot) 升序排序
func sortByTriple(entries []model.ScheduleEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Location != entries[j].Location {
			return entries[i].Location < entries[j].Location
		}
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].TimeSlot < entries[j].TimeSlot
	})
}

func toEntryResponses(entries []model.ScheduleEntry) []dto.EntryResponse {
	result := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toEntryResponse(&entries[i]))
	}
	return result
}

func toEntryResponse(e *model.ScheduleEntry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:       e.ID,
		Location: e.Location,
		Day:      e.Day,
		TimeSlot: e.TimeSlot,
		Faculty:  e.Faculty,
		Batch:    e.Batch,
		Capacity: e.Capacity,
	}
}
