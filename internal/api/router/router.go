package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Oskru/study-smart/config"
	"github.com/Oskru/study-smart/internal/api/handler"
	"github.com/Oskru/study-smart/internal/api/middleware"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/pkg/jwt"
)

// maxBodyBytes 普通请求体上限；上传接口单独放宽
const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 6 << 20
)

// Deps 路由依赖；Tokens / Limiter 为 nil 时跳过黑名单与限流
type Deps struct {
	Config  *config.Config
	Handler *handler.Handler
	JWT     *jwt.Manager
	Tokens  middleware.TokenChecker
	Limiter middleware.RateLimiter
	Logger  *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	h := d.Handler

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(d.Config.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	small := middleware.BodyLimit(maxBodyBytes)
	upload := middleware.BodyLimit(maxUploadBytes)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth", small)
		{
			auth.POST("/login", middleware.RateLimit(d.Limiter, d.Config.Auth.LoginRateLimit, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(d.Limiter, d.Config.Auth.LoginRateLimit, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.JWT, d.Tokens))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.GET("/catalog", h.Catalog.Get)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin, model.RolePlanner), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth(model.RoleAdmin, model.RolePlanner), h.User.GetUser)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.DeleteUser)
				users.POST("/:id/confirm", middleware.RoleAuth(model.RoleAdmin), h.Auth.ConfirmLecturer)
				users.POST("/planners", small, middleware.RoleAuth(model.RoleAdmin), h.User.CreatePlanner)
				users.POST("/import", upload, middleware.RoleAuth(model.RoleAdmin, model.RolePlanner), h.User.ImportStudents)
			}

			// 课程模块
			manage := middleware.RoleAuth(model.RoleAdmin, model.RolePlanner)
			courses := authorized.Group("/courses", small)
			{
				courses.GET("", manage, h.Course.ListCourses)
				courses.GET("/mine", h.Course.ListMyCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.GET("/:id/eligibility", h.Preference.Eligibility)
				courses.POST("", manage, h.Course.CreateCourse)
				courses.PUT("/:id", manage, h.Course.UpdateCourse)
				courses.DELETE("/:id", manage, h.Course.DeleteCourse)
				courses.PUT("/:id/lecturer", manage, h.Course.AssignLecturer)
			}

			// 小组模块
			groups := authorized.Group("/groups", small, manage)
			{
				groups.GET("", h.Group.ListGroups)
				groups.GET("/:id", h.Group.GetGroup)
				groups.POST("", h.Group.CreateGroup)
				groups.PUT("/:id", h.Group.UpdateGroup)
				groups.DELETE("/:id", h.Group.DeleteGroup)
			}

			// 讲师可用时间
			availability := authorized.Group("/availability", middleware.RoleAuth(model.RoleLecturer))
			{
				availability.GET("", h.Availability.ListMine)
				availability.POST("", small, h.Availability.Submit)
				availability.DELETE("", small, h.Availability.Delete)
				availability.POST("/import", upload, h.Availability.ImportICS)
			}

			// 学生偏好
			preferences := authorized.Group("/preferences", small, middleware.RoleAuth(model.RoleStudent))
			{
				preferences.GET("", h.Preference.ListMine)
				preferences.POST("", h.Preference.Submit)
				preferences.DELETE("", h.Preference.Delete)
			}

			// 网格选择会话（用途与角色的匹配在 Service 层校验）
			sessions := authorized.Group("/sessions", small, middleware.RoleAuth(model.RoleLecturer, model.RoleStudent))
			{
				sessions.POST("", h.Selection.Open)
				sessions.GET("/:id", h.Selection.Get)
				sessions.POST("/:id/toggle", h.Selection.Toggle)
				sessions.PUT("/:id/mode", h.Selection.SwitchMode)
				sessions.POST("/:id/submit", h.Selection.Submit)
				sessions.DELETE("/:id", h.Selection.Close)
			}

			// 投票统计与导出
			authorized.GET("/votes", manage, h.Vote.Tally)
			authorized.GET("/export/votes", manage, h.Export.ExportTally)
		}
	}

	return r
}
