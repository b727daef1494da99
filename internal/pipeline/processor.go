// Package pipeline 定义了文件处理的核心流程：提取文本 -> 生成脚本 -> 写回结果。
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"microlearning-go/internal/generator"
	"microlearning-go/internal/model"
	"microlearning-go/internal/repository"
	"microlearning-go/pkg/log"
	"microlearning-go/pkg/storage"
	"microlearning-go/pkg/tasks"
)

// TextExtractor 把文件转换为非空文本。
type TextExtractor interface {
	ExtractNonEmpty(ctx context.Context, name string, data []byte) (string, error)
}

// ScriptGenerator 把文本转换为脚本。
type ScriptGenerator interface {
	Generate(ctx context.Context, text string) generator.Result
}

// Processor 封装了文件处理的所有依赖和逻辑。
type Processor struct {
	store     storage.FileStore
	extractor TextExtractor
	generator ScriptGenerator
	fileRepo  repository.FileRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	store storage.FileStore,
	extractor TextExtractor,
	generator ScriptGenerator,
	fileRepo repository.FileRepository,
) *Processor {
	return &Processor{
		store:     store,
		extractor: extractor,
		generator: generator,
		fileRepo:  fileRepo,
	}
}

// Process 处理单个文件。无论从哪条路径返回（包括 panic），
// 记录都会且只会被更新一次为 script_ready 或 script_failed。
// 提取失败和生成失败会被吸收，返回的 error 只表示存储故障或 panic。
func (p *Processor) Process(ctx context.Context, task tasks.ScriptTask) (err error) {
	status := model.FileStatusScriptFailed
	var scriptJSON *string

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("[Process] 处理文件时发生 panic", "file_id", task.FileID, "panic", r)
			status, scriptJSON = model.FileStatusScriptFailed, nil
			err = fmt.Errorf("panic while processing file %d: %v", task.FileID, r)
		}
		if updErr := p.fileRepo.UpdateFileStatus(context.WithoutCancel(ctx), task.FileID, status, scriptJSON); updErr != nil {
			log.Errorw("[Process] 写回文件状态失败", "file_id", task.FileID, "status", status, "error", updErr)
			err = errors.Join(err, fmt.Errorf("update status of file %d: %w", task.FileID, updErr))
			return
		}
		log.Infow("[Process] 文件处理结束", "file_id", task.FileID, "status", status)
	}()

	log.Infow("[Process] 开始处理文件", "file_id", task.FileID, "stored_name", task.StoredName)

	data, err := p.store.Read(ctx, task.StoredName)
	if err != nil {
		return fmt.Errorf("read stored file %s: %w", task.StoredName, err)
	}

	text, err := p.extractor.ExtractNonEmpty(ctx, task.StoredName, data)
	if err != nil {
		log.Warnw("[Process] 文本提取失败", "file_id", task.FileID, "error", err)
		return nil
	}

	script, ok := p.generator.Generate(ctx, text).Script()
	if !ok {
		log.Warnw("[Process] 脚本生成不可用", "file_id", task.FileID)
		return nil
	}

	raw, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("marshal script of file %d: %w", task.FileID, err)
	}
	blob := string(raw)
	status, scriptJSON = model.FileStatusScriptReady, &blob
	return nil
}
