package dto

// ── 管理模块 DTO ──

// CreateEntryRequest 创建排课记录请求
type CreateEntryRequest struct {
	Location string  `json:"location"  binding:"required"`
	Day      string  `json:"day"       binding:"required"`
	TimeSlot string  `json:"time_slot" binding:"required"`
	Faculty  string  `json:"faculty"   binding:"required"`
	Batch    *string `json:"batch"`
	Capacity int     `json:"capacity"  binding:"gte=0"`
}

// UpdateEntryRequest 部分更新请求 — 仅应用非空字段
type UpdateEntryRequest struct {
	Location *string `json:"location"`
	Day      *string `json:"day"`
	TimeSlot *string `json:"time_slot"`
	Faculty  *string `json:"faculty"`
	Batch    *string `json:"batch"`
	Capacity *int    `json:"capacity" binding:"omitempty,gte=0"`
}

// ── 管理模块响应 ──

// EntryListResponse 全量记录列表响应
type EntryListResponse struct {
	Entries    []EntryResponse `json:"entries"`
	TotalCount int             `json:"total_count"`
}

// MutationResponse 写操作响应
type MutationResponse struct {
	Message string         `json:"message"`
	Data    *EntryResponse `json:"data,omitempty"`
}

// ReloadResponse 快照重新加载响应
type ReloadResponse struct {
	Message      string `json:"message"`
	TotalEntries int    `json:"total_entries"`
}
