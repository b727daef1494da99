package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sourcegraph/conc/pool"

	"microlearning-go/internal/config"
	"microlearning-go/pkg/log"
	"microlearning-go/pkg/tasks"
)

// TaskProcessor defines the interface for any service that can process a task.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.ScriptTask) error
}

// TaskClaimer 保证同一个文件只会被处理一次。
type TaskClaimer interface {
	Claim(ctx context.Context, fileID uint) (bool, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 从 Kafka 读取任务并交给 TaskProcessor。
// 每个任务在独立的 goroutine 中执行，任务交出后立即提交 offset，不做重试。
type Consumer struct {
	reader    messageReader
	processor TaskProcessor
	claimer   TaskClaimer
	pool      *pool.Pool
}

func newConsumer(reader messageReader, processor TaskProcessor, claimer TaskClaimer) *Consumer {
	return &Consumer{reader: reader, processor: processor, claimer: claimer, pool: pool.New()}
}

// NewConsumer 创建一个 Kafka 消费者。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, claimer TaskClaimer) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokerList(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(r, processor, claimer)
}

// Run 阻塞读取消息，直到 ctx 被取消或读取出错；返回前等待已交出的任务执行完。
func (c *Consumer) Run(ctx context.Context) {
	log.Info("Kafka 消费者已启动")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("Kafka 消费者已停止")
			} else {
				log.Error("从 Kafka 读取消息失败", err)
			}
			break
		}
		c.handle(ctx, m)
	}

	if err := c.reader.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
	c.pool.Wait()
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	defer func() {
		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}()

	log.Infof("收到 Kafka 消息: partition %d, offset %d", m.Partition, m.Offset)

	var task tasks.ScriptTask
	if err := json.Unmarshal(m.Value, &task); err != nil || task.FileID == 0 {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
		return
	}

	claimed, err := c.claimer.Claim(ctx, task.FileID)
	if err != nil {
		// Redis 不可用时不跳过任务
		log.Warnf("领取任务失败，继续处理: file_id=%d, error: %v", task.FileID, err)
	} else if !claimed {
		log.Infof("文件任务已被处理过，跳过: file_id=%d", task.FileID)
		return
	}

	detached := context.WithoutCancel(ctx)
	c.pool.Go(func() {
		if err := c.processor.Process(detached, task); err != nil {
			log.Errorf("处理文件任务失败: file_id=%d, error: %v", task.FileID, err)
			return
		}
		log.Infof("文件任务处理完成: file_id=%d", task.FileID)
	})
}
