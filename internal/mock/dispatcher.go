package mock

import (
	"context"
	"sync"

	"microlearning-go/pkg/tasks"
)

// MockDispatcher 只记录被提交的任务。
type MockDispatcher struct {
	mu    sync.Mutex
	Tasks []tasks.ScriptTask
	Err   error
}

func (m *MockDispatcher) Dispatch(_ context.Context, task tasks.ScriptTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Tasks = append(m.Tasks, task)
	return nil
}

// MockProcessor 实现 TaskProcessor，记录任务并返回预设错误。
type MockProcessor struct {
	mu    sync.Mutex
	Tasks []tasks.ScriptTask
	Err   error
	// Block 非空时 Process 会一直等到它被关闭。
	Block chan struct{}
}

func (m *MockProcessor) Process(ctx context.Context, task tasks.ScriptTask) error {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks = append(m.Tasks, task)
	return m.Err
}

func (m *MockProcessor) Processed() []tasks.ScriptTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tasks.ScriptTask(nil), m.Tasks...)
}
