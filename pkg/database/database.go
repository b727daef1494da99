// Package database 负责关系型数据库与 Redis 连接的初始化。
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"microlearning-go/internal/config"
	"microlearning-go/internal/model"
	"microlearning-go/pkg/log"
)

var DB *gorm.DB

// Open 根据配置的驱动打开数据库连接并配置连接池。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch cfg.Driver {
	case config.DatabaseDriverMySQL:
		db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取 sql.DB 失败: %w", err)
		}
		sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil

	case config.DatabaseDriverSQLite, "":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, fmt.Errorf("创建 SQLite 目录失败: %w", err)
			}
		}
		// busy_timeout 让并发写入时等待锁而不是直接报错
		dsn := cfg.SQLite.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取 sql.DB 失败: %w", err)
		}
		// SQLite 只允许一个写连接
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", cfg.Driver)
	}
}

// Migrate 创建 files 和 videos 表，可重复执行。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.File{}, &model.Video{})
}

// InitDB 初始化全局数据库连接并完成表结构迁移。
func InitDB(cfg config.DatabaseConfig) {
	db, err := Open(cfg)
	if err != nil {
		log.Fatal("failed to connect database", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatal("failed to migrate database", err)
	}
	DB = db
	log.Infof("数据库连接成功, driver=%s", cfg.Driver)
}
