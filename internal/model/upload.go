package model

import "time"

// UploadStatus 上传处理状态
type UploadStatus string

const (
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusSuccess    UploadStatus = "success"
	UploadStatusFailed     UploadStatus = "failed"
)

// UploadLog 上传审计记录（只记录处理过程，不保存分析结果）
type UploadLog struct {
	ID            int64        `json:"id"`
	UploadID      string       `json:"uploadId"`
	Filename      string       `json:"filename"`
	FileSize      int64        `json:"fileSize"`
	FileHash      string       `json:"fileHash"`
	Status        UploadStatus `json:"status"`
	ResultCount   int          `json:"resultCount"`
	QuestionCount int          `json:"questionCount"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
}
