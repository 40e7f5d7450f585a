package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lab-availability/config"
	"lab-availability/internal/model"
	pkgerrors "lab-availability/pkg/errors"
)

// ── 表格快照后端 ──────────────────────────────────────────────
//
// 职责：进程启动时从 .xlsx 工作簿加载一次排课数据，之后所有读操作
// 针对同一份不可变快照执行。
//
// 设计决策：
//   - 快照是不可变值，放在 atomic.Pointer 后面；Reload 解析出
//     新快照后整体原子替换，绝不原地修改
//   - 写操作（Insert/Update/Delete）一律返回 ErrStoreReadOnly
//   - 点查未命中与 GORM 后端一致，返回 gorm.ErrRecordNotFound
// ─────────────────────────────────────────────────────────────

type sheetSnapshot struct {
	entries []model.ScheduleEntry
}

// SheetRepository 只读的表格快照实现
type SheetRepository struct {
	file     string
	sheet    string
	snapshot atomic.Pointer[sheetSnapshot]
	logger   *zap.Logger
}

// NewSheetRepository 创建表格后端并完成首次加载
func NewSheetRepository(cfg *config.SheetConfig, logger *zap.Logger) (*SheetRepository, error) {
	r := &SheetRepository{
		file:   cfg.File,
		sheet:  cfg.Sheet,
		logger: logger,
	}
	n, err := r.Reload(context.Background())
	if err != nil {
		return nil, err
	}
	logger.Info("表格快照加载完成",
		zap.String("file", cfg.File),
		zap.Int("entries", n),
	)
	return r, nil
}

// Reload 重新解析工作簿并原子替换当前快照
func (r *SheetRepository) Reload(_ context.Context) (int, error) {
	entries, err := r.load()
	if err != nil {
		return 0, err
	}
	r.snapshot.Store(&sheetSnapshot{entries: entries})
	return len(entries), nil
}

// load 解析工作簿为记录切片
// 期望的表头列：id（可选）、location、day、time_slot、faculty、batch、capacity
func (r *SheetRepository) load() ([]model.ScheduleEntry, error) {
	f, err := excelize.OpenFile(r.file)
	if err != nil {
		return nil, fmt.Errorf("打开数据文件失败: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %q 失败: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("数据文件为空: %s", r.file)
	}

	// 表头 → 列下标
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"location", "day", "time_slot", "faculty", "capacity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("数据文件缺少必需列 %q", required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	entries := make([]model.ScheduleEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		entry := model.ScheduleEntry{
			Location: cell(row, "location"),
			Day:      cell(row, "day"),
			TimeSlot: cell(row, "time_slot"),
			Faculty:  cell(row, "faculty"),
		}
		if entry.Location == "" {
			continue // 跳过空行
		}

		// id 列可选，缺省时按行号分配
		if raw := cell(row, "id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行 id 非法: %q", i+2, raw)
			}
			entry.ID = uint(id)
		} else {
			entry.ID = uint(i + 1)
		}

		if raw := cell(row, "capacity"); raw != "" {
			capacity, err := strconv.Atoi(raw)
			if err != nil || capacity < 0 {
				return nil, fmt.Errorf("第 %d 行 capacity 非法: %q", i+2, raw)
			}
			entry.Capacity = capacity
		}

		if batch := cell(row, "batch"); batch != "" {
			entry.Batch = &batch
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// ── 读操作：针对当前快照执行 ──

func (r *SheetRepository) List(_ context.Context, filter *EntryFilter) ([]model.ScheduleEntry, error) {
	snap := r.snapshot.Load()

	result := make([]model.ScheduleEntry, 0, len(snap.entries))
	for _, e := range snap.entries {
		if matchFilter(&e, filter) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *SheetRepository) GetByTriple(_ context.Context, location, day, timeSlot string) (*model.ScheduleEntry, error) {
	snap := r.snapshot.Load()
	for _, e := range snap.entries {
		if e.Location == location && e.Day == day && e.TimeSlot == timeSlot {
			entry := e
			return &entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func matchFilter(e *model.ScheduleEntry, filter *EntryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Location != "" && e.Location != filter.Location {
		return false
	}
	if filter.Day != "" && e.Day != filter.Day {
		return false
	}
	if filter.TimeSlot != "" && e.TimeSlot != filter.TimeSlot {
		return false
	}
	if filter.Faculty != "" && e.Faculty != filter.Faculty {
		return false
	}
	if filter.MinCapacity != nil && e.Capacity < *filter.MinCapacity {
		return false
	}
	return true
}

// ── 写操作：只读后端一律拒绝 ──

func (r *SheetRepository) Insert(_ context.Context, _ *model.ScheduleEntry) error {
	return pkgerrors.ErrStoreReadOnly
}

func (r *SheetRepository) UpdateByID(_ context.Context, _ uint, _ map[string]interface{}) (*model.ScheduleEntry, error) {
	return nil, pkgerrors.ErrStoreReadOnly
}

func (r *SheetRepository) DeleteByID(_ context.Context, _ uint) (*model.ScheduleEntry, error) {
	return nil, pkgerrors.ErrStoreReadOnly
}
