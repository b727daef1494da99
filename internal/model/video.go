package model

import "time"

// VideoStatusPending 是视频记录的默认状态。
const VideoStatusPending = "pending"

// Video 对应于数据库中的 'videos' 表，一个文件可以派生出多个视频。
type Video struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    uint      `gorm:"not null;index" json:"file_id"`
	File      *File     `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE" json:"-"`
	Path      string    `gorm:"column:video_path;type:varchar(512);not null" json:"video_path"`
	Status    string    `gorm:"type:varchar(32);not null;default:pending" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Video) TableName() string {
	return "videos"
}
