// Package extractor 负责把上传的文件转换成纯文本。
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"microlearning-go/pkg/log"
)

var (
	// ErrUnsupportedType 表示文件扩展名既不是 .txt 也不是 .pdf。
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmptyText 表示提取结果去掉空白后为空。
	ErrEmptyText = errors.New("no text extracted")
	// ErrInvalidEncoding 表示 .txt 文件不是合法的 UTF-8。
	ErrInvalidEncoding = errors.New("text file is not valid UTF-8")
)

const (
	ExtTXT = ".txt"
	ExtPDF = ".pdf"
)

// PDFTextExtractor 把 PDF 字节转换为文本，由不同后端实现。
type PDFTextExtractor interface {
	ExtractPDF(ctx context.Context, name string, data []byte) (string, error)
}

// Extractor 根据文件扩展名选择提取方式。
type Extractor struct {
	pdf PDFTextExtractor
}

// New 创建提取器；pdf 为 nil 时使用内置的 PDF 解析。
func New(pdf PDFTextExtractor) *Extractor {
	if pdf == nil {
		pdf = NewNativePDF()
	}
	return &Extractor{pdf: pdf}
}

// Extract 返回文件的纯文本。扩展名不区分大小写。
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ExtTXT:
		if !utf8.Valid(data) {
			return "", ErrInvalidEncoding
		}
		// 原样返回，BOM 也保留
		return string(data), nil
	case ExtPDF:
		text, err := e.pdf.ExtractPDF(ctx, name, data)
		if err != nil {
			return "", fmt.Errorf("解析 PDF %s 失败: %w", name, err)
		}
		log.Infow("PDF 文本提取完成", "file", name, "chars", len(text))
		return text, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedType, ext)
	}
}

// ExtractNonEmpty 与 Extract 相同，但去掉空白后为空的结果返回 ErrEmptyText。
func (e *Extractor) ExtractNonEmpty(ctx context.Context, name string, data []byte) (string, error) {
	text, err := e.Extract(ctx, name, data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
