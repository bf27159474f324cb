package router

import (
	"net/http"
	"time"

	"github.com/calorielog/internal/config"
	"github.com/calorielog/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 前后端分离部署，跨域请求必须携带 Cookie，
	// 因此来源只接受显式白名单，不能用通配符
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 配置会话中间件。
	// 跨站携带 Cookie 需要 SameSite=None，而 None 必须配合 Secure，
	// 因此仅在启用 TLS 的部署上打开；本地 HTTP 部署用 Lax 即可。
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	sameSite := http.SameSiteLaxMode
	if cfg.SessionSecure {
		sameSite = http.SameSiteNoneMode
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
		SameSite: sameSite,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))

	gate := api.Gate()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 用户身份
	r.POST("/signup", api.Signup)
	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)
	r.GET("/whoami", api.Whoami)
	r.PUT("/users/password", gate.RequireUser(), api.ChangePassword)

	// 管理员身份
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.AdminLogin)
		admin.POST("/logout", api.AdminLogout)
		admin.GET("/whoami", api.AdminWhoami)
	}

	// 官方食物：读取开放，变更仅限管理员
	foods := r.Group("/foods")
	{
		foods.GET("", api.GetFoods)
		foods.GET("/name/:name", api.GetFoodByName)

		mutate := foods.Group("")
		mutate.Use(gate.RequireAdmin())
		{
			mutate.POST("", api.CreateFood)
			mutate.PUT("/:id", api.UpdateFood)
			mutate.DELETE("/:id", api.DeleteFood)
		}
	}

	// 自建食物：全部仅限登录用户本人
	customerFoods := r.Group("/customer-foods")
	customerFoods.Use(gate.RequireUser())
	{
		customerFoods.GET("", api.GetCustomerFoods)
		customerFoods.POST("", api.CreateCustomerFood)
		customerFoods.GET("/:id", api.GetCustomerFood)
		customerFoods.PUT("/:id", api.UpdateCustomerFood)
		customerFoods.DELETE("/:id", api.DeleteCustomerFood)
	}

	// 饮食纪录：全部仅限登录用户本人
	// /diet_record 是旧服务的路径写法，保留别名兼容旧前端
	for _, prefix := range []string{"/diet-records", "/diet_record"} {
		records := r.Group(prefix)
		records.Use(gate.RequireUser())
		{
			records.GET("", api.GetDietRecords)
			records.POST("", api.CreateDietRecord)
			records.GET("/summary", api.GetDailySummary)
			records.GET("/:id", api.GetDietRecord)
			records.PUT("/:id", api.UpdateDietRecord)
			records.DELETE("/:id", api.DeleteDietRecord)
		}
	}

	// 用户设置
	settings := r.Group("/user-settings")
	settings.Use(gate.RequireUser())
	{
		settings.GET("", api.GetUserSettings)
		settings.PUT("", api.UpdateUserSettings)
	}

	return r
}
