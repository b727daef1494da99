// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 文件记录的状态。状态只会沿 uploaded -> processing -> script_ready/script_failed 前进。
const (
	FileStatusUploaded     = "uploaded"
	FileStatusProcessing   = "processing"
	FileStatusScriptReady  = "script_ready"
	FileStatusScriptFailed = "script_failed"
)

// File 定义了 files 表的 ORM 模型。
// 它记录了每个上传文件的元数据、处理状态以及生成的脚本。
type File struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StoredName   string    `gorm:"column:filename;type:varchar(255);not null" json:"filename"`
	OriginalName string    `gorm:"column:original_filename;type:varchar(255);not null" json:"original_filename"`
	Status       string    `gorm:"type:varchar(32);not null;default:uploaded" json:"status"`
	ScriptJSON   *string   `gorm:"column:script_json;type:text" json:"script_json"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (File) TableName() string {
	return "files"
}

// IsTerminal 判断状态是否已经是终态。
func IsTerminal(status string) bool {
	return status == FileStatusScriptReady || status == FileStatusScriptFailed
}
