package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lab-availability/config"
	"lab-availability/internal/api/handler"
	"lab-availability/internal/api/middleware"
	"lab-availability/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// 路径与动词保持与既有 API 字面兼容（含尾部斜杠）
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 问候与健康检查 ──
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "欢迎使用实验室/教室可用性查询系统！"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 查询模块 ──
	r.GET("/locations/", h.Schedule.ListLocations)
	r.POST("/availability/", h.Schedule.CheckAvailability)
	r.POST("/locations/capacity/", h.Schedule.FindByCapacity)
	r.GET("/timetable/", h.Schedule.FullTimetable)
	r.GET("/locations/day/", h.Schedule.ListByDay)
	r.GET("/locations/time/", h.Schedule.ListByTimeSlot)
	r.POST("/locations/faculty/", h.Schedule.SearchByFaculty)
	r.GET("/stats/", h.Schedule.Statistics)

	// ── 管理模块（写操作施加限流）──
	admin := r.Group("/admin")
	admin.Use(middleware.RateLimit(rdb, 60, time.Minute))
	{
		admin.GET("/entries/", h.Admin.ListEntries)
		admin.POST("/entries/", h.Admin.CreateEntry)
		admin.PUT("/entries/:id", h.Admin.UpdateEntry)
		admin.DELETE("/entries/:id", h.Admin.DeleteEntry)
		admin.POST("/reload/", h.Admin.ReloadSnapshot)
	}

	// ── 导出模块 ──
	export := r.Group("/export")
	{
		export.GET("/schedule", h.Export.ExportSchedule)
		export.GET("/calendar", h.Export.ExportCalendar)
	}

	return r
}
