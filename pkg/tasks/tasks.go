// Package tasks 定义了后台脚本生成任务的数据结构，也是 Kafka 消息体。
package tasks

// ScriptTask 表示一个文件的脚本生成任务。
type ScriptTask struct {
	FileID     uint   `json:"file_id"`
	StoredName string `json:"stored_name"`
}
