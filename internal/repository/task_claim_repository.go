package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const taskClaimTTL = 24 * time.Hour

// TaskClaimRepository 用 Redis 记录哪些文件已经开始处理，保证同一文件最多只处理一次。
type TaskClaimRepository interface {
	// Claim 返回 true 表示本次调用抢到了处理权。
	Claim(ctx context.Context, fileID uint) (bool, error)
}

type taskClaimRepository struct {
	redisClient *redis.Client
}

// NewTaskClaimRepository 创建一个新的 TaskClaimRepository 实例。
func NewTaskClaimRepository(redisClient *redis.Client) TaskClaimRepository {
	return &taskClaimRepository{redisClient: redisClient}
}

func (r *taskClaimRepository) getClaimKey(fileID uint) string {
	return "script_task:" + strconv.FormatUint(uint64(fileID), 10)
}

func (r *taskClaimRepository) Claim(ctx context.Context, fileID uint) (bool, error) {
	return r.redisClient.SetNX(ctx, r.getClaimKey(fileID), time.Now().Unix(), taskClaimTTL).Result()
}
