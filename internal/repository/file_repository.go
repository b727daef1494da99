// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"

	"gorm.io/gorm"

	"microlearning-go/internal/model"
)

// FileRepository 接口定义了文件记录相关的数据持久化操作。
type FileRepository interface {
	InsertFile(ctx context.Context, storedName, originalName string) (*model.File, error)
	GetAllFiles(ctx context.Context) ([]model.File, error)
	GetFile(ctx context.Context, id uint) (*model.File, error)
	// UpdateFileStatus 更新状态；scriptJSON 非空时与状态在同一条语句中写入，否则保留原有脚本。
	UpdateFileStatus(ctx context.Context, id uint, status string, scriptJSON *string) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建一个新的 FileRepository 实例。
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// InsertFile 插入一条状态为 uploaded 的文件记录。
func (r *fileRepository) InsertFile(ctx context.Context, storedName, originalName string) (*model.File, error) {
	record := &model.File{
		StoredName:   storedName,
		OriginalName: originalName,
		Status:       model.FileStatusUploaded,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// GetAllFiles 按创建时间倒序返回所有文件记录。
func (r *fileRepository) GetAllFiles(ctx context.Context) ([]model.File, error) {
	files := make([]model.File, 0)
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&files).Error
	return files, err
}

// GetFile 根据 ID 获取文件记录，不存在时返回 gorm.ErrRecordNotFound。
func (r *fileRepository) GetFile(ctx context.Context, id uint) (*model.File, error) {
	var record model.File
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *fileRepository) UpdateFileStatus(ctx context.Context, id uint, status string, scriptJSON *string) error {
	q := r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id)
	if scriptJSON == nil {
		return q.Update("status", status).Error
	}
	return q.Updates(map[string]interface{}{
		"status":      status,
		"script_json": *scriptJSON,
	}).Error
}
