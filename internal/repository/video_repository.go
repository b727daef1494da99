package repository

import (
	"context"

	"gorm.io/gorm"

	"microlearning-go/internal/model"
)

// VideoRepository 定义了视频记录的读写操作。
type VideoRepository interface {
	GetVideosForFile(ctx context.Context, fileID uint) ([]model.Video, error)
	CreateVideo(ctx context.Context, video *model.Video) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository 创建一个新的 VideoRepository 实例。
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// GetVideosForFile 按创建时间倒序返回某个文件的所有视频，没有时返回空切片。
func (r *videoRepository) GetVideosForFile(ctx context.Context, fileID uint) ([]model.Video, error) {
	videos := make([]model.Video, 0)
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC").Order("id DESC").
		Find(&videos).Error
	return videos, err
}

// CreateVideo 插入一条视频记录，状态为空时使用 pending。
func (r *videoRepository) CreateVideo(ctx context.Context, video *model.Video) error {
	if video.Status == "" {
		video.Status = model.VideoStatusPending
	}
	return r.db.WithContext(ctx).Create(video).Error
}
