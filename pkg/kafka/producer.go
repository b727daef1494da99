// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"microlearning-go/internal/config"
	"microlearning-go/pkg/log"
	"microlearning-go/pkg/tasks"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 把脚本生成任务发送到 Kafka，实现了上传流程所需的 Dispatcher。
type Producer struct {
	writer messageWriter
}

func brokerList(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// WriteMessages 是同步的，默认 1s 的 BatchTimeout 会直接拖慢上传响应
const writerBatchTimeout = 10 * time.Millisecond

func newWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokerList(cfg.Brokers)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           writerBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := newWriter(cfg)
	log.Infof("Kafka 生产者初始化成功, topic: %s", cfg.Topic)
	return &Producer{writer: w}
}

// Dispatch 发送一个脚本生成任务，以文件 ID 作为消息 key。
func (p *Producer) Dispatch(ctx context.Context, task tasks.ScriptTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(task.FileID), 10)),
		Value: taskBytes,
	})
	if err != nil {
		return fmt.Errorf("发送 Kafka 消息失败: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
