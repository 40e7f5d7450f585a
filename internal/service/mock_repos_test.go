package service

import (
	"context"

	"gorm.io/gorm"

	"lab-availability/internal/model"
	"lab-availability/internal/repository"
	pkgerrors "lab-availability/pkg/errors"
)

// ── Mock ScheduleRepository ──
//
// 模拟带复合唯一索引的存储：Insert / UpdateByID 在三元组冲突时
// 返回 pkg/errors.ErrDuplicateEntry，与 Postgres 后端行为一致。

type mockScheduleRepo struct {
	entries  map[uint]*model.ScheduleEntry
	nextID   uint
	readOnly bool
	listErr  error
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{entries: make(map[uint]*model.ScheduleEntry), nextID: 1}
}

// add 测试装配用：绕过只读/唯一性检查直接放入记录
func (m *mockScheduleRepo) add(e model.ScheduleEntry) {
	if e.ID == 0 {
		e.ID = m.nextID
	}
	if e.ID >= m.nextID {
		m.nextID = e.ID + 1
	}
	m.entries[e.ID] = &e
}

func (m *mockScheduleRepo) List(_ context.Context, filter *repository.EntryFilter) ([]model.ScheduleEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if !mockMatch(e, filter) {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func mockMatch(e *model.ScheduleEntry, filter *repository.EntryFilter) bool {
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

func (m *mockScheduleRepo) GetByTriple(_ context.Context, location, day, timeSlot string) (*model.ScheduleEntry, error) {
	for _, e := range m.entries {
		if e.Location == location && e.Day == day && e.TimeSlot == timeSlot {
			entry := *e
			return &entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) Insert(_ context.Context, entry *model.ScheduleEntry) error {
	if m.readOnly {
		return pkgerrors.ErrStoreReadOnly
	}
	for _, e := range m.entries {
		if e.Location == entry.Location && e.Day == entry.Day && e.TimeSlot == entry.TimeSlot {
			return pkgerrors.ErrDuplicateEntry
		}
	}
	entry.ID = m.nextID
	m.nextID++
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockScheduleRepo) UpdateByID(_ context.Context, id uint, fields map[string]interface{}) (*model.ScheduleEntry, error) {
	if m.readOnly {
		return nil, pkgerrors.ErrStoreReadOnly
	}
	e, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	patched := *e
	for k, v := range fields {
		switch k {
		case "location":
			patched.Location = v.(string)
		case "day":
			patched.Day = v.(string)
		case "time_slot":
			patched.TimeSlot = v.(string)
		case "faculty":
			patched.Faculty = v.(string)
		case "batch":
			b := v.(string)
			patched.Batch = &b
		case "capacity":
			patched.Capacity = v.(int)
		}
	}

	// 唯一索引语义：补丁后的三元组与其他记录冲突时拒绝
	for _, other := range m.entries {
		if other.ID != id &&
			other.Location == patched.Location &&
			other.Day == patched.Day &&
			other.TimeSlot == patched.TimeSlot {
			return nil, pkgerrors.ErrDuplicateEntry
		}
	}

	m.entries[id] = &patched
	result := patched
	return &result, nil
}

func (m *mockScheduleRepo) DeleteByID(_ context.Context, id uint) (*model.ScheduleEntry, error) {
	if m.readOnly {
		return nil, pkgerrors.ErrStoreReadOnly
	}
	e, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	result := *e
	return &result, nil
}

func (m *mockScheduleRepo) Reload(_ context.Context) (int, error) {
	return 0, pkgerrors.ErrReloadUnsupported
}
