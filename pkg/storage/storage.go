// Package storage 提供了上传文件字节的存储后端：本地文件系统或 MinIO。
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound 表示请求的文件不存在。
var ErrObjectNotFound = errors.New("storage: object not found")

// FileStore 是文件字节存储的抽象。
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
}
