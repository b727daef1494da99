// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType 表示上传的文件扩展名不被接受。
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileNotFound 表示文件记录不存在。
	ErrFileNotFound = errors.New("file not found")
)

// UnsupportedFileTypeError 携带被拒绝的扩展名，errors.Is 可匹配 ErrUnsupportedFileType。
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("Invalid file type '%s'. Only .txt and .pdf files are allowed.", e.Ext)
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}
