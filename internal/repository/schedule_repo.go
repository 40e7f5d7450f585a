package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lab-availability/internal/model"
	pkgerrors "lab-availability/pkg/errors"
)

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建基于 GORM 的 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) List(ctx context.Context, filter *EntryFilter) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	db := r.db.WithContext(ctx)

	if filter != nil {
		if filter.Location != "" {
			db = db.Where("location = ?", filter.Location)
		}
		if filter.Day != "" {
			db = db.Where("day = ?", filter.Day)
		}
		if filter.TimeSlot != "" {
			db = db.Where("time_slot = ?", filter.TimeSlot)
		}
		if filter.Faculty != "" {
			db = db.Where("faculty = ?", filter.Faculty)
		}
		if filter.MinCapacity != nil {
			db = db.Where("capacity >= ?", *filter.MinCapacity)
		}
	}

	err := db.Find(&entries).Error
	return entries, err
}

func (r *scheduleRepo) GetByTriple(ctx context.Context, location, day, timeSlot string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("location = ? AND day = ? AND time_slot = ?", location, day, timeSlot).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleRepo) Insert(ctx context.Context, entry *model.ScheduleEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *scheduleRepo) UpdateByID(ctx context.Context, id uint, fields map[string]interface{}) (*model.ScheduleEntry, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ScheduleEntry{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, translateDuplicate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var entry model.ScheduleEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleRepo) DeleteByID(ctx context.Context, id uint) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.ScheduleEntry{}, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleRepo) Reload(_ context.Context) (int, error) {
	return 0, pkgerrors.ErrReloadUnsupported
}

// translateDuplicate 将 GORM 的唯一键冲突翻译为业务哨兵错误
func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateEntry
	}
	return err
}
