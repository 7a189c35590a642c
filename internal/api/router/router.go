package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Steven-Nagy-788/eui-lib-sys/config"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/api/handler"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/api/middleware"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/jwt"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/redis"
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
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录注册限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetMe)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me/dashboard", h.User.Dashboard)
				users.GET("", middleware.RoleAuth("admin"), h.User.List)
				users.GET("/:id", middleware.RoleAuth("admin"), h.User.Get)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.Update)
			}

			// 书目模块
			books := authorized.Group("/books")
			{
				books.GET("", h.Book.List)
				books.GET("/:id", h.Book.Get)
				books.POST("", middleware.RoleAuth("admin"), h.Book.Create)
				books.PUT("/:id", middleware.RoleAuth("admin"), h.Book.Update)
				books.DELETE("/:id", middleware.RoleAuth("admin"), h.Book.Delete)
			}

			// 副本模块
			copies := authorized.Group("/book-copies")
			{
				copies.GET("", h.Copy.List)
				copies.GET("/:id", h.Copy.Get)
				copies.GET("/accession/:number", h.Copy.GetByAccessionNumber)
				copies.GET("/book/:book_id", h.Copy.ListByBook)
				copies.GET("/book/:book_id/stats", h.Copy.Stats)
				copies.POST("", middleware.RoleAuth("admin"), h.Copy.Create)
				copies.POST("/inventory", middleware.RoleAuth("admin"), h.Copy.AddInventory)
				copies.PUT("/:id", middleware.RoleAuth("admin"), h.Copy.Update)
				copies.DELETE("/:id", middleware.RoleAuth("admin"), h.Copy.Delete)
			}

			// 借阅模块
			loans := authorized.Group("/loans")
			{
				loans.POST("/request", h.Loan.Request)
				loans.GET("/my", h.Loan.ListMy)
				loans.GET("/due-date-preview", h.Loan.PreviewDueDate)
				loans.POST("/:id/cancel", h.Loan.Cancel)

				loans.GET("", middleware.RoleAuth("admin"), h.Loan.List)
				loans.GET("/search", middleware.RoleAuth("admin"), h.Loan.Search)
				loans.GET("/overdue", middleware.RoleAuth("admin"), h.Loan.ListOverdue)
				loans.GET("/status/:status", middleware.RoleAuth("admin"), h.Loan.ListByStatus)
				loans.GET("/:id", h.Loan.Get)
				loans.POST("/:id/approve", middleware.RoleAuth("admin"), h.Loan.Approve)
				loans.POST("/:id/reject", middleware.RoleAuth("admin"), h.Loan.Reject)
				loans.POST("/:id/checkout", middleware.RoleAuth("admin"), h.Loan.Checkout)
				loans.POST("/:id/return", middleware.RoleAuth("admin"), h.Loan.Return)
				loans.DELETE("/:id", middleware.RoleAuth("admin"), h.Loan.Delete)

				// 借阅策略
				loans.GET("/policies", h.Loan.ListPolicies)
				loans.GET("/policies/:role", h.Loan.GetPolicy)
				loans.PUT("/policies/:role", middleware.RoleAuth("admin"), h.Loan.UpdatePolicy)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.List)
				courses.GET("/enrollments/my", h.Course.ListMyEnrollments)
				courses.GET("/:code", h.Course.Get)
				courses.GET("/:code/books", h.Course.ListBooks)
				courses.POST("", middleware.RoleAuth("admin"), h.Course.Create)
				courses.PUT("/:code", middleware.RoleAuth("admin"), h.Course.Update)
				courses.DELETE("/:code", middleware.RoleAuth("admin"), h.Course.Delete)
				courses.POST("/enrollments", middleware.RoleAuth("admin"), h.Course.Enroll)
				courses.DELETE("/enrollments/:id", middleware.RoleAuth("admin"), h.Course.Unenroll)
				courses.POST("/:code/books", middleware.RoleAuth("admin"), h.Course.LinkBook)
				courses.DELETE("/:code/books/:book_id", middleware.RoleAuth("admin"), h.Course.UnlinkBook)
			}

			// 统计模块
			stats := authorized.Group("/stats")
			stats.Use(middleware.RoleAuth("admin"))
			{
				stats.GET("/dashboard", h.Stats.Dashboard)
				stats.GET("/most-borrowed", h.Stats.MostBorrowed)
				stats.GET("/loans-by-month", h.Stats.LoansByMonth)
				stats.GET("/top-borrowers", h.Stats.TopBorrowers)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/loans", middleware.RoleAuth("admin"), h.Export.ExportLoans)
				export.GET("/overdue", middleware.RoleAuth("admin"), h.Export.ExportOverdue)
				export.GET("/calendar", h.Export.DueDateCalendar)
			}
		}
	}

	return r
}
