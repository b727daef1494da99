package mock

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"microlearning-go/internal/model"
)

// StatusUpdate 记录一次 UpdateFileStatus 调用。
type StatusUpdate struct {
	ID         uint
	Status     string
	ScriptJSON *string
}

// MockFileRepository 是 repository.FileRepository 的内存实现。
type MockFileRepository struct {
	mu        sync.Mutex
	nextID    uint
	files     map[uint]*model.File
	Updates   []StatusUpdate
	InsertErr error
	UpdateErr error
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{files: make(map[uint]*model.File)}
}

func (m *MockFileRepository) InsertFile(_ context.Context, storedName, originalName string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	m.nextID++
	f := &model.File{
		ID:           m.nextID,
		StoredName:   storedName,
		OriginalName: originalName,
		Status:       model.FileStatusUploaded,
		CreatedAt:    time.Now(),
	}
	m.files[f.ID] = f
	cp := *f
	return &cp, nil
}

func (m *MockFileRepository) GetAllFiles(_ context.Context) ([]model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.File, 0, len(m.files))
	for id := m.nextID; id > 0; id-- {
		if f, ok := m.files[id]; ok {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *MockFileRepository) GetFile(_ context.Context, id uint) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MockFileRepository) UpdateFileStatus(_ context.Context, id uint, status string, scriptJSON *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, StatusUpdate{ID: id, Status: status, ScriptJSON: scriptJSON})
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if f, ok := m.files[id]; ok {
		f.Status = status
		if scriptJSON != nil {
			s := *scriptJSON
			f.ScriptJSON = &s
		}
	}
	return nil
}

// Seed 直接放入一条记录，返回其 ID。
func (m *MockFileRepository) Seed(f model.File) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	f.ID = m.nextID
	m.files[f.ID] = &f
	return f.ID
}

// UpdatesFor 返回某个文件的所有状态更新。
func (m *MockFileRepository) UpdatesFor(id uint) []StatusUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []StatusUpdate
	for _, u := range m.Updates {
		if u.ID == id {
			out = append(out, u)
		}
	}
	return out
}
