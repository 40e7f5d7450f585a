package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lab-availability/config"
	"lab-availability/internal/model"
	"lab-availability/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEntries = errors.New("当前没有任何排课记录可导出")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - ExportSchedule 将完整时间表导出为 Excel (.xlsx)，列与数据文件
//     的导入格式一致，导出结果可直接作为表格后端的数据文件使用
//   - ExportCalendar 将已占用的时段导出为 iCalendar (RFC 5545)，
//     每条记录映射为按周重复的事件；时间段名称 → 具体起止时刻的
//     映射来自配置 export.slot_times
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	ExportSchedule(ctx context.Context) (*bytes.Buffer, string, error)
	ExportCalendar(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	cfg    *config.ExportConfig
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, cfg *config.ExportConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, cfg: cfg, logger: logger}
}

// sheetColumns 导出工作表的表头，与表格后端的导入格式保持一致
var sheetColumns = []string{"id", "location", "day", "time_slot", "faculty", "batch", "capacity"}

// ────────────────────── ExportSchedule ──────────────────────

func (s *exportService) ExportSchedule(ctx context.Context) (*bytes.Buffer, string, error) {
	entries, err := s.sortedEntries(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	f.SetSheetName(f.GetSheetName(0), sheet)

	// 表头加粗
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, headerStyle)
	}
	for i, col := range sheetColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	for row, e := range entries {
		batch := ""
		if e.Batch != nil {
			batch = *e.Batch
		}
		values := []interface{}{e.ID, e.Location, e.Day, e.TimeSlot, e.Faculty, batch, e.Capacity}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("lab_schedule_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── ExportCalendar ──────────────────────

var weekdayByName = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

var icsByDay = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

func (s *exportService) ExportCalendar(ctx context.Context) (*bytes.Buffer, string, error) {
	entries, err := s.sortedEntries(ctx)
	if err != nil {
		return nil, "", err
	}

	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//lab-availability//schedule//EN")

	now := time.Now().In(loc)
	for i := range entries {
		e := &entries[i]
		if e.IsFree() {
			continue // 只导出已占用的时段
		}

		weekday, ok := weekdayByName[e.Day]
		if !ok {
			continue // 非标准星期值的记录无法映射为日历事件
		}
		slotTime, ok := s.cfg.SlotTimes[e.TimeSlot]
		if !ok {
			continue
		}
		start, err1 := time.Parse("15:04", slotTime.Start)
		end, err2 := time.Parse("15:04", slotTime.End)
		if err1 != nil || err2 != nil {
			continue
		}

		// 从下一个对应星期起，按周重复
		first := nextWeekday(now, weekday)
		dtStart := time.Date(first.Year(), first.Month(), first.Day(),
			start.Hour(), start.Minute(), 0, 0, loc)
		dtEnd := time.Date(first.Year(), first.Month(), first.Day(),
			end.Hour(), end.Minute(), 0, 0, loc)

		event := cal.AddEvent(fmt.Sprintf("entry-%d@lab-availability", e.ID))
		event.SetDtStampTime(now)
		event.SetStartAt(dtStart)
		event.SetEndAt(dtEnd)
		summary := e.Faculty
		if e.Batch != nil && *e.Batch != "" {
			summary = fmt.Sprintf("%s (%s)", e.Faculty, *e.Batch)
		}
		event.SetSummary(summary)
		event.SetLocation(e.Location)
		event.SetDescription(fmt.Sprintf("%s %s", e.Day, e.TimeSlot))
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", icsByDay[weekday]))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("lab_schedule_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 内部辅助方法 ──

func (s *exportService) sortedEntries(ctx context.Context) ([]model.ScheduleEntry, error) {
	entries, err := s.repo.Schedule.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询排课记录失败", zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrExportNoEntries
	}
	sortByTriple(entries)
	return entries, nil
}

// nextWeekday from 之后（含当天）最近的指定星期
func nextWeekday(from time.Time, weekday time.Weekday) time.Time {
	days := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, days)
}
