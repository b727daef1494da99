package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"microlearning-go/internal/config"
	"microlearning-go/pkg/log"
)

var RDB *redis.Client

// NewRedis 创建 Redis 客户端并测试连接。
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return client, nil
}

// InitRedis 初始化全局 Redis 客户端连接
func InitRedis(cfg config.RedisConfig) {
	client, err := NewRedis(context.Background(), cfg)
	if err != nil {
		log.Fatal("failed to connect to redis", err)
	}
	RDB = client
	log.Info("Redis client connected successfully")
}
