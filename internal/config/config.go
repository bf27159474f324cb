package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SessionSecret  string
	SessionName    string
	SessionSecure  bool
	GinMode        string
	AllowedOrigins []string
	AdminUsername  string
	AdminPassword  string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 工作目录下存在 .env 时会先行加载，方便本地开发。
func Load() AppConfig {
	// .env 不存在不算错误
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "calorielog.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "calorielog-dev-secret"
	}

	sessionName := strings.TrimSpace(os.Getenv("SESSION_NAME"))
	if sessionName == "" {
		sessionName = "calorielog_session"
	}

	// 只有在 TLS 部署上才把会话 Cookie 标成 Secure，
	// 否则浏览器和 HTTP 客户端都不会回传 Cookie
	sessionSecure := false
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SESSION_SECURE"))) {
	case "1", "true", "yes":
		sessionSecure = true
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	allowedOrigins := splitOrigins(os.Getenv("ALLOWED_ORIGINS"))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://127.0.0.1:5000"}
	}

	adminUsername := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	adminPassword := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   databasePath,
		SessionSecret:  sessionSecret,
		SessionName:    sessionName,
		SessionSecure:  sessionSecure,
		GinMode:        ginMode,
		AllowedOrigins: allowedOrigins,
		AdminUsername:  adminUsername,
		AdminPassword:  adminPassword,
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
