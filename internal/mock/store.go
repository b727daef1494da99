package mock

import (
	"context"
	"sync"

	"microlearning-go/pkg/storage"
)

// MockFileStore 实现 storage.FileStore，数据保存在内存中。
type MockFileStore struct {
	mu      sync.Mutex
	Files   map[string][]byte
	SaveErr error
	ReadErr error
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{Files: make(map[string][]byte)}
}

func (m *MockFileStore) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Files[name] = append([]byte(nil), data...)
	return nil
}

func (m *MockFileStore) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	data, ok := m.Files[name]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

// Names 返回已保存的文件名。
func (m *MockFileStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	return names
}
