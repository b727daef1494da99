package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"microlearning-go/pkg/log"
	"microlearning-go/pkg/tasks"
)

// ErrDispatcherClosed 表示调度器已经停止接收新任务。
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// TaskProcessor defines the interface for any service that can process a task.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.ScriptTask) error
}

// AsyncDispatcher 把每个任务交给一个不限数量的 goroutine 池执行，提交后立即返回。
type AsyncDispatcher struct {
	processor TaskProcessor

	mu     sync.RWMutex
	closed bool
	pool   *pool.Pool
}

// NewAsyncDispatcher 创建一个新的 AsyncDispatcher 实例。
func NewAsyncDispatcher(processor TaskProcessor) *AsyncDispatcher {
	return &AsyncDispatcher{
		processor: processor,
		pool:      pool.New(),
	}
}

// Dispatch 提交任务。任务使用与请求解耦的 context，请求结束不会取消它。
func (d *AsyncDispatcher) Dispatch(ctx context.Context, task tasks.ScriptTask) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	detached := context.WithoutCancel(ctx)
	d.pool.Go(func() {
		if err := d.processor.Process(detached, task); err != nil {
			log.Errorw("[AsyncDispatcher] 任务执行失败", "file_id", task.FileID, "error", err)
		}
	})
	return nil
}

// Wait 停止接收新任务并等待正在执行的任务结束。
func (d *AsyncDispatcher) Wait() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.pool.Wait()
}
