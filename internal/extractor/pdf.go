package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"microlearning-go/pkg/tika"
)

// PageReader 返回每一页的纯文本，按页码顺序。
type PageReader func(data []byte) ([]string, error)

// NativePDF 在进程内解析 PDF。
type NativePDF struct {
	readPages PageReader
}

// NewNativePDF 使用 ledongthuc/pdf 解析页面。
func NewNativePDF() *NativePDF {
	return &NativePDF{readPages: readPDFPages}
}

// ExtractPDF 按顺序拼接每一页的文本，只有空白的页被跳过，页与页之间用 \n 连接。
func (p *NativePDF) ExtractPDF(_ context.Context, _ string, data []byte) (string, error) {
	pages, err := p.readPages(data)
	if err != nil {
		return "", err
	}
	return joinPages(pages), nil
}

func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		// GetPlainText 会在每个 BT 前输出一个换行
		if page = strings.TrimSpace(page); page != "" {
			kept = append(kept, page)
		}
	}
	return strings.Join(kept, "\n")
}

func readPDFPages(data []byte) (pages []string, err error) {
	// 损坏的 PDF 可能让解析库 panic
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("读取第 %d 页失败: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// TikaPDF 把 PDF 交给 Apache Tika 服务器解析。
type TikaPDF struct {
	client *tika.Client
}

// NewTikaPDF 创建基于 Tika 的 PDF 后端。
func NewTikaPDF(client *tika.Client) *TikaPDF {
	return &TikaPDF{client: client}
}

func (t *TikaPDF) ExtractPDF(ctx context.Context, name string, data []byte) (string, error) {
	return t.client.ExtractText(ctx, bytes.NewReader(data), name)
}
