package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"microlearning-go/internal/model"
	"microlearning-go/internal/repository"
	"microlearning-go/pkg/log"
)

// StatusDTO 是状态查询接口的返回值。
type StatusDTO struct {
	FileID    uint          `json:"file_id"`
	Filename  string        `json:"filename"`
	Status    string        `json:"status"`
	Script    *model.Script `json:"script"`
	CreatedAt time.Time     `json:"created_at"`
	Videos    []model.Video `json:"videos"`
}

// FileService 接口定义了文件查询相关的业务操作。
type FileService interface {
	ListFiles(ctx context.Context) ([]model.File, error)
	GetStatus(ctx context.Context, id uint) (*StatusDTO, error)
}

type fileService struct {
	fileRepo  repository.FileRepository
	videoRepo repository.VideoRepository
}

// NewFileService 创建一个新的 FileService 实例。
func NewFileService(fileRepo repository.FileRepository, videoRepo repository.VideoRepository) FileService {
	return &fileService{fileRepo: fileRepo, videoRepo: videoRepo}
}

// ListFiles 按创建时间倒序返回全部记录，脚本保持存储时的原样。
func (s *fileService) ListFiles(ctx context.Context) ([]model.File, error) {
	files, err := s.fileRepo.GetAllFiles(ctx)
	if err != nil {
		log.Errorf("[ListFiles] 查询文件列表失败, error: %v", err)
		return nil, err
	}
	return files, nil
}

// GetStatus 返回文件状态、解码后的脚本以及关联的视频。
func (s *fileService) GetStatus(ctx context.Context, id uint) (*StatusDTO, error) {
	file, err := s.fileRepo.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		log.Errorf("[GetStatus] 查询文件失败, file_id: %d, error: %v", id, err)
		return nil, err
	}

	videos, err := s.videoRepo.GetVideosForFile(ctx, id)
	if err != nil {
		log.Errorf("[GetStatus] 查询视频失败, file_id: %d, error: %v", id, err)
		return nil, err
	}
	if videos == nil {
		videos = []model.Video{}
	}

	return &StatusDTO{
		FileID:    file.ID,
		Filename:  file.OriginalName,
		Status:    file.Status,
		Script:    decodeScript(file),
		CreatedAt: file.CreatedAt,
		Videos:    videos,
	}, nil
}

// decodeScript 解码失败时返回 nil，只记录日志。
func decodeScript(file *model.File) *model.Script {
	if file.ScriptJSON == nil || *file.ScriptJSON == "" {
		return nil
	}
	var script model.Script
	if err := json.Unmarshal([]byte(*file.ScriptJSON), &script); err != nil {
		log.Warnf("[GetStatus] 无法解码 script_json, file_id: %d, error: %v", file.ID, err)
		return nil
	}
	return &script
}
