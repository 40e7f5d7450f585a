package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"lab-availability/internal/dto"
	"lab-availability/internal/service"
	"lab-availability/pkg/response"
)

// ScheduleHandler 排课查询模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListLocations 获取全部地点（字典序升序）
// GET /locations/
func (h *ScheduleHandler) ListLocations(c *gin.Context) {
	locations, err := h.scheduleSvc.ListLocations(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询地点列表失败: "+err.Error())
		return
	}

	response.OK(c, dto.LocationListResponse{Locations: locations})
}

// CheckAvailability 查询指定地点在指定时段的可用性
// POST /availability/
func (h *ScheduleHandler) CheckAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败: location_name、day、time_slot 均为必填")
		return
	}

	result, err := h.scheduleSvc.CheckAvailability(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			response.NotFound(c, fmt.Sprintf("没有 %q 在 %s 的 %s 的排课信息。",
				req.LocationName, req.Day, req.TimeSlot))
			return
		}
		response.InternalError(c, "可用性查询失败: "+err.Error())
		return
	}

	response.OK(c, result)
}

// FindByCapacity 按最低容量查询地点 — 无匹配返回空列表而非 404
// POST /locations/capacity/
func (h *ScheduleHandler) FindByCapacity(c *gin.Context) {
	var req dto.CapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败: capacity 必须为非负整数")
		return
	}

	locations, err := h.scheduleSvc.LocationsByCapacity(c.Request.Context(), req.Capacity)
	if err != nil {
		response.InternalError(c, "按容量查询地点失败: "+err.Error())
		return
	}

	resp := dto.CapacityResponse{Locations: locations, Count: len(locations)}
	if len(locations) == 0 {
		resp.Message = "没有满足容量要求的地点。"
	}
	response.OK(c, resp)
}

// FullTimetable 获取完整时间表
// GET /timetable/
func (h *ScheduleHandler) FullTimetable(c *gin.Context) {
	timetable, err := h.scheduleSvc.FullTimetable(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询完整时间表失败: "+err.Error())
		return
	}

	response.OK(c, dto.TimetableResponse{
		Timetable:    timetable,
		TotalEntries: len(timetable),
	})
}

// ListByDay 查询指定星期有排课的地点
// GET /locations/day/?day=Monday
func (h *ScheduleHandler) ListByDay(c *gin.Context) {
	var q dto.DayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "参数校验失败: day 为必填")
		return
	}

	locations, err := h.scheduleSvc.LocationsByDay(c.Request.Context(), q.Day)
	if err != nil {
		response.InternalError(c, "按星期查询地点失败: "+err.Error())
		return
	}

	resp := dto.DayResponse{Locations: locations, Day: q.Day, Count: len(locations)}
	if len(locations) == 0 {
		resp.Message = fmt.Sprintf("%s 没有可用的地点。", q.Day)
	}
	response.OK(c, resp)
}

// ListByTimeSlot 查询指定时间段有排课的地点
// GET /locations/time/?time_slot=Slot%201
func (h *ScheduleHandler) ListByTimeSlot(c *gin.Context) {
	var q dto.TimeSlotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "参数校验失败: time_slot 为必填")
		return
	}

	locations, err := h.scheduleSvc.LocationsByTimeSlot(c.Request.Context(), q.TimeSlot)
	if err != nil {
		response.InternalError(c, "按时间段查询地点失败: "+err.Error())
		return
	}

	resp := dto.TimeSlotResponse{Locations: locations, TimeSlot: q.TimeSlot, Count: len(locations)}
	if len(locations) == 0 {
		resp.Message = fmt.Sprintf("%s 期间没有可用的地点。", q.TimeSlot)
	}
	response.OK(c, resp)
}

// SearchByFaculty 按教师查询排课 — faculty_name 为 "Free" 时返回全部空闲时段
// POST /locations/faculty/
func (h *ScheduleHandler) SearchByFaculty(c *gin.Context) {
	var req dto.FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败: faculty_name 为必填")
		return
	}

	schedule, err := h.scheduleSvc.ScheduleByFaculty(c.Request.Context(), req.FacultyName)
	if err != nil {
		response.InternalError(c, "按教师查询失败: "+err.Error())
		return
	}

	resp := dto.FacultyScheduleResponse{
		Faculty:      req.FacultyName,
		Schedule:     schedule,
		TotalClasses: len(schedule),
	}
	if len(schedule) == 0 {
		resp.Message = fmt.Sprintf("教师 %s 没有任何排课记录。", req.FacultyName)
	}
	response.OK(c, resp)
}

// Statistics 获取聚合统计
// GET /stats/
func (h *ScheduleHandler) Statistics(c *gin.Context) {
	stats, err := h.scheduleSvc.Statistics(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询统计数据失败: "+err.Error())
		return
	}

	response.OK(c, stats)
}
