package main

import (
	"log"

	"github.com/calorielog/internal/config"
	"github.com/calorielog/internal/db"
	"github.com/calorielog/internal/handler"
	"github.com/calorielog/internal/router"
	"github.com/calorielog/internal/session"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 管理员不开放注册，从环境变量种子化
	if err := db.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin account: %v", err)
	}

	api := handler.NewAPI(db.DB, session.NewGate())

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
