package dto

// ── 查询模块 DTO ──

// AvailabilityRequest 可用性查询请求
type AvailabilityRequest struct {
	LocationName string `json:"location_name" binding:"required"`
	Day          string `json:"day"           binding:"required"`
	TimeSlot     string `json:"time_slot"     binding:"required"`
}

// CapacityRequest 按容量查询请求
type CapacityRequest struct {
	Capacity int `json:"capacity" binding:"gte=0"`
}

// FacultyRequest 按教师查询请求
type FacultyRequest struct {
	FacultyName string `json:"faculty_name" binding:"required"`
}

// DayQuery 按星期查询参数
type DayQuery struct {
	Day string `form:"day" binding:"required"`
}

// TimeSlotQuery 按时间段查询参数
type TimeSlotQuery struct {
	TimeSlot string `form:"time_slot" binding:"required"`
}

// ── 查询模块响应 ──

// EntryResponse 单条排课记录响应
type EntryResponse struct {
	ID       uint    `json:"id"`
	Location string  `json:"location"`
	Day      string  `json:"day"`
	TimeSlot string  `json:"time_slot"`
	Faculty  string  `json:"faculty"`
	Batch    *string `json:"batch,omitempty"`
	Capacity int     `json:"capacity"`
}

// AvailabilityResponse 可用性查询响应
type AvailabilityResponse struct {
	Location  string  `json:"location"`
	Day       string  `json:"day"`
	TimeSlot  string  `json:"time_slot"`
	Available bool    `json:"available"`
	Faculty   string  `json:"faculty"`
	Batch     *string `json:"batch,omitempty"`
	Capacity  int     `json:"capacity"`
	Message   string  `json:"message"`
}

// LocationListResponse 地点列表响应（字典序升序）
type LocationListResponse struct {
	Locations []string `json:"locations"`
}

// CapacityResponse 按容量查询响应 — 无匹配时返回空列表而非 404
type CapacityResponse struct {
	Locations []string `json:"locations"`
	Count     int      `json:"count"`
	Message   string   `json:"message,omitempty"`
}

// DayResponse 按星期查询响应
type DayResponse struct {
	Locations []string `json:"locations"`
	Day       string   `json:"day"`
	Count     int      `json:"count"`
	Message   string   `json:"message,omitempty"`
}

// TimeSlotResponse 按时间段查询响应
type TimeSlotResponse struct {
	Locations []string `json:"locations"`
	TimeSlot  string   `json:"time_slot"`
	Count     int      `json:"count"`
	Message   string   `json:"message,omitempty"`
}

// FacultyScheduleResponse 按教师查询响应
type FacultyScheduleResponse struct {
	Faculty      string          `json:"faculty"`
	Schedule     []EntryResponse `json:"schedule"`
	TotalClasses int             `json:"total_classes"`
	Message      string          `json:"message,omitempty"`
}

// TimetableResponse 完整时间表响应
type TimetableResponse struct {
	Timetable    []EntryResponse `json:"timetable"`
	TotalEntries int             `json:"total_entries"`
}

// StatsResponse 聚合统计响应
// utilization_rate = 已占用 / 总数 × 100，保留两位小数；总数为 0 时为 0
type StatsResponse struct {
	TotalEntries    int     `json:"total_entries"`
	TotalLocations  int     `json:"total_locations"`
	FreeSlots       int     `json:"free_slots"`
	OccupiedSlots   int     `json:"occupied_slots"`
	UtilizationRate float64 `json:"utilization_rate"`
}
