package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"lab-availability/internal/dto"
	"lab-availability/internal/service"
	pkgerrors "lab-availability/pkg/errors"
	"lab-availability/pkg/response"
)

// AdminHandler 排课管理模块 HTTP 处理器
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ListEntries 获取全部排课记录
// GET /admin/entries/
func (h *AdminHandler) ListEntries(c *gin.Context) {
	entries, err := h.adminSvc.ListEntries(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询排课记录失败: "+err.Error())
		return
	}

	response.OK(c, dto.EntryListResponse{
		Entries:    entries,
		TotalCount: len(entries),
	})
}

// CreateEntry 创建排课记录
// POST /admin/entries/
func (h *AdminHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败: location、day、time_slot、faculty 为必填，capacity 须为非负整数")
		return
	}

	entry, err := h.adminSvc.CreateEntry(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err, "创建排课记录失败")
		return
	}

	response.Created(c, dto.MutationResponse{
		Message: "排课记录创建成功",
		Data:    entry,
	})
}

// UpdateEntry 部分更新排课记录
// PUT /admin/entries/:id
func (h *AdminHandler) UpdateEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	entry, err := h.adminSvc.UpdateEntry(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAdminError(c, err, "更新排课记录失败")
		return
	}

	response.OK(c, dto.MutationResponse{
		Message: "排课记录更新成功",
		Data:    entry,
	})
}

// DeleteEntry 删除排课记录 — 删除是永久且立即生效的
// DELETE /admin/entries/:id
func (h *AdminHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	if err := h.adminSvc.DeleteEntry(c.Request.Context(), id); err != nil {
		h.handleAdminError(c, err, "删除排课记录失败")
		return
	}

	response.OK(c, dto.MutationResponse{Message: "排课记录删除成功"})
}

// ReloadSnapshot 重新加载数据快照（仅表格后端）
// POST /admin/reload/
func (h *AdminHandler) ReloadSnapshot(c *gin.Context) {
	n, err := h.adminSvc.ReloadSnapshot(c.Request.Context())
	if err != nil {
		h.handleAdminError(c, err, "重新加载快照失败")
		return
	}

	response.OK(c, dto.ReloadResponse{
		Message:      "数据快照重新加载成功",
		TotalEntries: n,
	})
}

// ── 内部辅助 ──

// parseEntryID 解析路径参数 :id；非法时直接写出 400
func parseEntryID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.BadRequest(c, "记录 ID 必须为正整数")
		return 0, false
	}
	return uint(id), true
}

// handleAdminError 统一处理管理模块业务错误
func (h *AdminHandler) handleAdminError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, "排课记录不存在")
	case errors.Is(err, service.ErrInvalidTimeSlot),
		errors.Is(err, service.ErrInvalidDay),
		errors.Is(err, service.ErrNoFieldsProvided),
		errors.Is(err, pkgerrors.ErrDuplicateEntry),
		errors.Is(err, pkgerrors.ErrStoreReadOnly),
		errors.Is(err, pkgerrors.ErrReloadUnsupported):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, fallback+": "+err.Error())
	}
}
