package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalStore 把文件保存在 afero 文件系统的某个目录下。
type LocalStore struct {
	fs  afero.Fs
	dir string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建。
func NewLocalStore(fs afero.Fs, dir string) (*LocalStore, error) {
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalStore{fs: fs, dir: dir}, nil
}

func (s *LocalStore) pathFor(name string) string {
	// 只取文件名部分，防止 ../ 逃逸出上传目录
	return filepath.Join(s.dir, path.Base(filepath.ToSlash(name)))
}

// Save 将数据写入 dir/name，已存在时覆盖。
func (s *LocalStore) Save(_ context.Context, name string, data []byte) error {
	if err := afero.WriteFile(s.fs, s.pathFor(name), data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", name, err)
	}
	return nil
}

// Read 读取 dir/name 的全部内容。
func (s *LocalStore) Read(_ context.Context, name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.pathFor(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}
		return nil, fmt.Errorf("读取文件 %s 失败: %w", name, err)
	}
	return data, nil
}
