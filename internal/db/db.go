package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 calorielog.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "calorielog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	// TranslateError 让唯一索引冲突以 gorm.ErrDuplicatedKey 返回，
	// service 层据此映射成各自的冲突错误
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	// 自动迁移模式，为核心模型创建表
	if err = DB.AutoMigrate(
		&User{},
		&Admin{},
		&Food{},
		&CustomerFood{},
		&DietRecord{},
	); err != nil {
		return err
	}

	// 旧数据没有 target_kcal 字段，统一补默认值
	if err := DB.Model(&User{}).
		Where("target_kcal IS NULL OR target_kcal = 0").
		Update("target_kcal", DefaultTargetKcal).Error; err != nil {
		return err
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
