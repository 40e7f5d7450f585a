package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"lab-availability/internal/dto"
	"lab-availability/internal/service"
	pkgerrors "lab-availability/pkg/errors"
	"lab-availability/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ScheduleService ──

type mockScheduleService struct {
	availResult     *dto.AvailabilityResponse
	availErr        error
	locationsResult []string
	locationsErr    error
	capacityResult  []string
	capacityErr     error
	dayResult       []string
	dayErr          error
	timeSlotResult  []string
	timeSlotErr     error
	facultyResult   []dto.EntryResponse
	facultyErr      error
	timetableResult []dto.EntryResponse
	timetableErr    error
	statsResult     *dto.StatsResponse
	statsErr        error
}

func (m *mockScheduleService) CheckAvailability(_ context.Context, _ *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	return m.availResult, m.availErr
}
func (m *mockScheduleService) ListLocations(_ context.Context) ([]string, error) {
	return m.locationsResult, m.locationsErr
}
func (m *mockScheduleService) LocationsByCapacity(_ context.Context, _ int) ([]string, error) {
	return m.capacityResult, m.capacityErr
}
func (m *mockScheduleService) LocationsByDay(_ context.Context, _ string) ([]string, error) {
	return m.dayResult, m.dayErr
}
func (m *mockScheduleService) LocationsByTimeSlot(_ context.Context, _ string) ([]string, error) {
	return m.timeSlotResult, m.timeSlotErr
}
func (m *mockScheduleService) ScheduleByFaculty(_ context.Context, _ string) ([]dto.EntryResponse, error) {
	return m.facultyResult, m.facultyErr
}
func (m *mockScheduleService) FullTimetable(_ context.Context) ([]dto.EntryResponse, error) {
	return m.timetableResult, m.timetableErr
}
func (m *mockScheduleService) Statistics(_ context.Context) (*dto.StatsResponse, error) {
	return m.statsResult, m.statsErr
}

// ── Mock AdminService ──

type mockAdminService struct {
	listResult   []dto.EntryResponse
	listErr      error
	createResult *dto.EntryResponse
	createErr    error
	updateResult *dto.EntryResponse
	updateErr    error
	deleteErr    error
	reloadResult int
	reloadErr    error
}

func (m *mockAdminService) ListEntries(_ context.Context) ([]dto.EntryResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockAdminService) CreateEntry(_ context.Context, _ *dto.CreateEntryRequest) (*dto.EntryResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAdminService) UpdateEntry(_ context.Context, _ uint, _ *dto.UpdateEntryRequest) (*dto.EntryResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockAdminService) DeleteEntry(_ context.Context, _ uint) error {
	return m.deleteErr
}
func (m *mockAdminService) ReloadSnapshot(_ context.Context) (int, error) {
	return m.reloadResult, m.reloadErr
}

// ── Mock ExportService ──

type mockExportService struct {
	scheduleBuf      *bytes.Buffer
	scheduleFilename string
	scheduleErr      error
	calendarBuf      *bytes.Buffer
	calendarFilename string
	calendarErr      error
}

func (m *mockExportService) ExportSchedule(_ context.Context) (*bytes.Buffer, string, error) {
	return m.scheduleBuf, m.scheduleFilename, m.scheduleErr
}
func (m *mockExportService) ExportCalendar(_ context.Context) (*bytes.Buffer, string, error) {
	return m.calendarBuf, m.calendarFilename, m.calendarErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doRequest(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseError(w *httptest.ResponseRecorder) response.ErrorBody {
	var body response.ErrorBody
	json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_ListLocations_Success(t *testing.T) {
	mock := &mockScheduleService{locationsResult: []string{"Lab1", "Lab2"}}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/locations/", h.ListLocations)
	w := doRequest(r, "GET", "/locations/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.LocationListResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Locations) != 2 || resp.Locations[0] != "Lab1" {
		t.Errorf("unexpected locations: %v", resp.Locations)
	}
}

func TestScheduleHandler_CheckAvailability_Success(t *testing.T) {
	mock := &mockScheduleService{
		availResult: &dto.AvailabilityResponse{
			Location:  "Lab1",
			Day:       "Monday",
			TimeSlot:  "Slot 1",
			Available: true,
			Faculty:   "Free",
			Capacity:  30,
		},
	}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.POST("/availability/", h.CheckAvailability)
	w := doRequest(r, "POST", "/availability/", jsonBody(dto.AvailabilityRequest{
		LocationName: "Lab1",
		Day:          "Monday",
		TimeSlot:     "Slot 1",
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.AvailabilityResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Available {
		t.Error("expected available=true")
	}
}

func TestScheduleHandler_CheckAvailability_NotFound(t *testing.T) {
	mock := &mockScheduleService{availErr: service.ErrEntryNotFound}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.POST("/availability/", h.CheckAvailability)
	w := doRequest(r, "POST", "/availability/", jsonBody(dto.AvailabilityRequest{
		LocationName: "Lab9",
		Day:          "Monday",
		TimeSlot:     "Slot 1",
	}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if parseError(w).Message == "" {
		t.Error("expected message in error body")
	}
}

func TestScheduleHandler_CheckAvailability_BadJSON(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := gin.New()
	r.POST("/availability/", h.CheckAvailability)
	w := doRequest(r, "POST", "/availability/", bytes.NewReader([]byte("not json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_CheckAvailability_MissingField(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := gin.New()
	r.POST("/availability/", h.CheckAvailability)
	w := doRequest(r, "POST", "/availability/", jsonBody(map[string]string{
		"location_name": "Lab1",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_FindByCapacity_EmptyList(t *testing.T) {
	// 无匹配返回 200 + 空列表，而非 404
	mock := &mockScheduleService{capacityResult: []string{}}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.POST("/locations/capacity/", h.FindByCapacity)
	w := doRequest(r, "POST", "/locations/capacity/", jsonBody(dto.CapacityRequest{Capacity: 500}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.CapacityResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 0 || resp.Message == "" {
		t.Errorf("expected empty result with message, got %+v", resp)
	}
}

func TestScheduleHandler_FindByCapacity_NegativeCapacity(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := gin.New()
	r.POST("/locations/capacity/", h.FindByCapacity)
	w := doRequest(r, "POST", "/locations/capacity/", jsonBody(map[string]int{"capacity": -1}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_ListByDay_Success(t *testing.T) {
	mock := &mockScheduleService{dayResult: []string{"Lab1"}}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/locations/day/", h.ListByDay)
	w := doRequest(r, "GET", "/locations/day/?day=Monday", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.DayResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Day != "Monday" || resp.Count != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestScheduleHandler_ListByDay_MissingParam(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	r := gin.New()
	r.GET("/locations/day/", h.ListByDay)
	w := doRequest(r, "GET", "/locations/day/", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_ListByTimeSlot_Empty(t *testing.T) {
	mock := &mockScheduleService{timeSlotResult: []string{}}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/locations/time/", h.ListByTimeSlot)
	w := doRequest(r, "GET", "/locations/time/?time_slot=Slot%209", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.TimeSlotResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 0 || resp.Message == "" {
		t.Errorf("expected empty result with message, got %+v", resp)
	}
}

func TestScheduleHandler_SearchByFaculty_Success(t *testing.T) {
	mock := &mockScheduleService{
		facultyResult: []dto.EntryResponse{
			{ID: 1, Location: "Lab1", Day: "Monday", TimeSlot: "Slot 1", Faculty: "Dr. Rao"},
		},
	}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.POST("/locations/faculty/", h.SearchByFaculty)
	w := doRequest(r, "POST", "/locations/faculty/", jsonBody(dto.FacultyRequest{FacultyName: "Dr. Rao"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.FacultyScheduleResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalClasses != 1 || resp.Faculty != "Dr. Rao" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestScheduleHandler_FullTimetable_Success(t *testing.T) {
	mock := &mockScheduleService{
		timetableResult: []dto.EntryResponse{
			{ID: 1, Location: "Lab1", Day: "Monday", TimeSlot: "Slot 1", Faculty: "Free", Capacity: 30},
			{ID: 2, Location: "Lab2", Day: "Monday", TimeSlot: "Slot 1", Faculty: "Dr. Rao", Capacity: 60},
		},
	}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/timetable/", h.FullTimetable)
	w := doRequest(r, "GET", "/timetable/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.TimetableResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalEntries != 2 {
		t.Errorf("expected total_entries=2, got %d", resp.TotalEntries)
	}
}

func TestScheduleHandler_Statistics_Success(t *testing.T) {
	mock := &mockScheduleService{
		statsResult: &dto.StatsResponse{
			TotalEntries:    4,
			TotalLocations:  2,
			FreeSlots:       2,
			OccupiedSlots:   2,
			UtilizationRate: 50,
		},
	}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/stats/", h.Statistics)
	w := doRequest(r, "GET", "/stats/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.UtilizationRate != 50 {
		t.Errorf("expected utilization_rate=50, got %v", resp.UtilizationRate)
	}
}

func TestScheduleHandler_InternalError(t *testing.T) {
	mock := &mockScheduleService{locationsErr: errors.New("db down")}
	h := NewScheduleHandler(mock)

	r := gin.New()
	r.GET("/locations/", h.ListLocations)
	w := doRequest(r, "GET", "/locations/", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if parseError(w).Message == "" {
		t.Error("expected message in error body")
	}
}

// ═══════════════════════════════════════════════════════════
// AdminHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAdminHandler_ListEntries_Success(t *testing.T) {
	mock := &mockAdminService{
		listResult: []dto.EntryResponse{
			{ID: 1, Location: "Lab1", Day: "Monday", TimeSlot: "Slot 1", Faculty: "Free"},
		},
	}
	h := NewAdminHandler(mock)

	r := gin.New()
	r.GET("/admin/entries/", h.ListEntries)
	w := doRequest(r, "GET", "/admin/entries/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.EntryListResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalCount != 1 {
		t.Errorf("expected total_count=1, got %d", resp.TotalCount)
	}
}

func TestAdminHandler_CreateEntry_Success(t *testing.T) {
	mock := &mockAdminService{
		createResult: &dto.EntryResponse{
			ID: 7, Location: "Lab1", Day: "Monday", TimeSlot: "Slot 1", Faculty: "Free", Capacity: 30,
		},
	}
	h := NewAdminHandler(mock)

	r := gin.New()
	r.POST("/admin/entries/", h.CreateEntry)
	w := doRequest(r, "POST", "/admin/entries/", jsonBody(dto.CreateEntryRequest{
		Location: "Lab1",
		Day:      "Monday",
		TimeSlot: "Slot 1",
		Faculty:  "Free",
		Capacity: 30,
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	var resp dto.MutationResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data == nil || resp.Data.ID != 7 {
		t.Errorf("expected created entry in response, got %+v", resp)
	}
}

func TestAdminHandler_CreateEntry_MissingFields(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{})

	r := gin.New()
	r.POST("/admin/entries/", h.CreateEntry)
	w := doRequest(r, "POST", "/admin/entries/", jsonBody(map[string]string{"location": "Lab1"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAdminHandler_UpdateEntry_Success(t *testing.T) {
	mock := &mockAdminService{
		updateResult: &dto.EntryResponse{
			ID: 1, Location: "Lab1", Day: "Monday", TimeSlot: "Slot 1", Faculty: "Dr. Rao",
		},
	}
	h := NewAdminHandler(mock)

	faculty := "Dr. Rao"
	r := gin.New()
	r.PUT("/admin/entries/:id", h.UpdateEntry)
	w := doRequest(r, "PUT", "/admin/entries/1", jsonBody(dto.UpdateEntryRequest{Faculty: &faculty}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.MutationResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data == nil || resp.Data.Faculty != "Dr. Rao" {
		t.Errorf("expected updated entry in response, got %+v", resp)
	}
}

func TestAdminHandler_UpdateEntry_InvalidID(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{})

	faculty := "Dr. Rao"
	r := gin.New()
	r.PUT("/admin/entries/:id", h.UpdateEntry)
	w := doRequest(r, "PUT", "/admin/entries/abc", jsonBody(dto.UpdateEntryRequest{Faculty: &faculty}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAdminHandler_DeleteEntry_Success(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{})

	r := gin.New()
	r.DELETE("/admin/entries/:id", h.DeleteEntry)
	w := doRequest(r, "DELETE", "/admin/entries/1", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAdminHandler_ReloadSnapshot_Success(t *testing.T) {
	mock := &mockAdminService{reloadResult: 42}
	h := NewAdminHandler(mock)

	r := gin.New()
	r.POST("/admin/reload/", h.ReloadSnapshot)
	w := doRequest(r, "POST", "/admin/reload/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp dto.ReloadResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalEntries != 42 {
		t.Errorf("expected total_entries=42, got %d", resp.TotalEntries)
	}
}

func TestAdminHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"NotFound", service.ErrEntryNotFound, 404},
		{"InvalidTimeSlot", service.ErrInvalidTimeSlot, 400},
		{"InvalidDay", service.ErrInvalidDay, 400},
		{"EmptyPatch", service.ErrNoFieldsProvided, 400},
		{"Duplicate", pkgerrors.ErrDuplicateEntry, 400},
		{"ReadOnly", pkgerrors.ErrStoreReadOnly, 400},
		{"ReloadUnsupported", pkgerrors.ErrReloadUnsupported, 400},
		{"InternalError", errors.New("db down"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAdminService{createErr: tt.err}
			h := NewAdminHandler(mock)

			r := gin.New()
			r.POST("/admin/entries/", h.CreateEntry)
			w := doRequest(r, "POST", "/admin/entries/", jsonBody(dto.CreateEntryRequest{
				Location: "Lab1",
				Day:      "Monday",
				TimeSlot: "Slot 1",
				Faculty:  "Free",
			}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if parseError(w).Message == "" {
				t.Error("expected message in error body")
			}
		})
	}
}

func TestAdminHandler_ErrorMapping_WrappedErrors(t *testing.T) {
	// 校验错误经 fmt.Errorf("%w") 包装后仍应映射为 400
	wrapped := fmt.Errorf("%w: %q", service.ErrInvalidTimeSlot, "Slot 99")
	mock := &mockAdminService{createErr: wrapped}
	h := NewAdminHandler(mock)

	r := gin.New()
	r.POST("/admin/entries/", h.CreateEntry)
	w := doRequest(r, "POST", "/admin/entries/", jsonBody(dto.CreateEntryRequest{
		Location: "Lab1",
		Day:      "Monday",
		TimeSlot: "Slot 99",
		Faculty:  "Free",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportSchedule_Success(t *testing.T) {
	mock := &mockExportService{
		scheduleBuf:      bytes.NewBufferString("excel content"),
		scheduleFilename: "排课表.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/schedule", h.ExportSchedule)
	w := doRequest(r, "GET", "/export/schedule", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_ExportSchedule_NoEntries(t *testing.T) {
	mock := &mockExportService{scheduleErr: service.ErrExportNoEntries}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/schedule", h.ExportSchedule)
	w := doRequest(r, "GET", "/export/schedule", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_ExportCalendar_Success(t *testing.T) {
	mock := &mockExportService{
		calendarBuf:      bytes.NewBufferString("BEGIN:VCALENDAR"),
		calendarFilename: "schedule.ics",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/calendar", h.ExportCalendar)
	w := doRequest(r, "GET", "/export/calendar", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != icsContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_ExportCalendar_InternalError(t *testing.T) {
	mock := &mockExportService{calendarErr: errors.New("render failed")}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/calendar", h.ExportCalendar)
	w := doRequest(r, "GET", "/export/calendar", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
