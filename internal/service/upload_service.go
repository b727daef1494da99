package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"microlearning-go/internal/extractor"
	"microlearning-go/internal/model"
	"microlearning-go/internal/repository"
	"microlearning-go/pkg/log"
	"microlearning-go/pkg/storage"
	"microlearning-go/pkg/tasks"
)

var allowedExtensions = map[string]struct{}{
	extractor.ExtTXT: {},
	extractor.ExtPDF: {},
}

// Dispatcher 把脚本生成任务交给后台执行，不等待其完成。
type Dispatcher interface {
	Dispatch(ctx context.Context, task tasks.ScriptTask) error
}

// UploadResult 是上传接口的返回值。
type UploadResult struct {
	FileID   uint   `json:"file_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// UploadService 接口定义了文件上传相关的业务操作。
type UploadService interface {
	Upload(ctx context.Context, originalName string, content io.Reader) (*UploadResult, error)
}

type uploadService struct {
	store      storage.FileStore
	fileRepo   repository.FileRepository
	dispatcher Dispatcher
}

// NewUploadService 创建一个新的 UploadService 实例。
func NewUploadService(store storage.FileStore, fileRepo repository.FileRepository, dispatcher Dispatcher) UploadService {
	return &uploadService{
		store:      store,
		fileRepo:   fileRepo,
		dispatcher: dispatcher,
	}
}

// ValidateExtension 返回小写的扩展名，不在 .txt/.pdf 之内时返回 *UnsupportedFileTypeError。
func ValidateExtension(originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", &UnsupportedFileTypeError{Ext: ext}
	}
	return ext, nil
}

// Upload 保存文件、创建记录、置为 processing 并提交后台任务，然后立即返回。
func (s *uploadService) Upload(ctx context.Context, originalName string, content io.Reader) (*UploadResult, error) {
	ext, err := ValidateExtension(originalName)
	if err != nil {
		log.Warnf("[Upload] 拒绝上传，文件名: %s, 原因: %v", originalName, err)
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("读取上传内容失败: %w", err)
	}

	storedName := uuid.New().String()
	storedName = strings.ReplaceAll(storedName, "-", "") + ext
	if err := s.store.Save(ctx, storedName, data); err != nil {
		log.Errorf("[Upload] 保存文件失败, stored_name: %s, error: %v", storedName, err)
		return nil, err
	}
	log.Infof("[Upload] 文件已保存: %s (原始文件名: %s, %d 字节)", storedName, originalName, len(data))

	record, err := s.fileRepo.InsertFile(ctx, storedName, originalName)
	if err != nil {
		log.Errorf("[Upload] 创建文件记录失败, error: %v", err)
		return nil, err
	}

	if err := s.fileRepo.UpdateFileStatus(ctx, record.ID, model.FileStatusProcessing, nil); err != nil {
		log.Errorf("[Upload] 更新文件状态为 processing 失败, file_id: %d, error: %v", record.ID, err)
		return nil, err
	}

	task := tasks.ScriptTask{FileID: record.ID, StoredName: storedName}
	if err := s.dispatcher.Dispatch(ctx, task); err != nil {
		log.Errorf("[Upload] 提交后台任务失败, file_id: %d, error: %v", record.ID, err)
		if updErr := s.fileRepo.UpdateFileStatus(context.WithoutCancel(ctx), record.ID, model.FileStatusScriptFailed, nil); updErr != nil {
			log.Errorf("[Upload] 标记 script_failed 失败, file_id: %d, error: %v", record.ID, updErr)
		}
		return nil, fmt.Errorf("提交后台任务失败: %w", err)
	}

	log.Infow("[Upload] 已提交脚本生成任务", "file_id", record.ID, "stored_name", storedName)
	return &UploadResult{
		FileID:   record.ID,
		Filename: originalName,
		Status:   model.FileStatusProcessing,
	}, nil
}
