package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/matcapl/portco-board-assistant/internal/model"
)

// ErrUploadLogNotFound 上传记录不存在
var ErrUploadLogNotFound = errors.New("upload log not found")

// CreateUploadLog 创建上传日志（状态 processing），返回自增 id
func (s *Store) CreateUploadLog(uploadID, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO upload_logs (upload_id, filename, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?)
	`, uploadID, filename, fileSize, fileHash, string(model.UploadStatusProcessing))
	if err != nil {
		return 0, fmt.Errorf("failed to create upload log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload log id: %w", err)
	}
	return id, nil
}

// CompleteUploadLog 标记上传处理完成
func (s *Store) CompleteUploadLog(id int64, resultCount, questionCount int) error {
	return s.finishUploadLog(id, model.UploadStatusSuccess, resultCount, questionCount, "")
}

// FailUploadLog 标记上传处理失败
func (s *Store) FailUploadLog(id int64, errorMessage string) error {
	return s.finishUploadLog(id, model.UploadStatusFailed, 0, 0, errorMessage)
}

func (s *Store) finishUploadLog(id int64, status model.UploadStatus, resultCount, questionCount int, errorMessage string) error {
	res, err := s.db.Exec(`
		UPDATE upload_logs SET
			status = ?,
			result_count = ?,
			question_count = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(status), resultCount, questionCount, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	if n == 0 {
		return ErrUploadLogNotFound
	}
	return nil
}

// GetUploadLog 按 id 查询上传日志
func (s *Store) GetUploadLog(id int64) (*model.UploadLog, error) {
	row := s.db.QueryRow(`
		SELECT id, upload_id, filename, file_size, file_hash, status,
		       result_count, question_count, error_message, created_at, completed_at
		FROM upload_logs WHERE id = ?
	`, id)
	item, err := scanUploadLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadLogNotFound
	}
	return item, err
}

// ListUploadLogs 最近的上传日志（按时间倒序）
func (s *Store) ListUploadLogs(limit int) ([]model.UploadLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, upload_id, filename, file_size, file_hash, status,
		       result_count, question_count, error_message, created_at, completed_at
		FROM upload_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.UploadLog, 0)
	for rows.Next() {
		item, err := scanUploadLog(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload logs: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUploadLog(row rowScanner) (*model.UploadLog, error) {
	var (
		item        model.UploadLog
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&item.ID,
		&item.UploadID,
		&item.Filename,
		&item.FileSize,
		&item.FileHash,
		&status,
		&item.ResultCount,
		&item.QuestionCount,
		&item.ErrorMessage,
		&item.CreatedAt,
		&completedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan upload log: %w", err)
	}
	item.Status = model.UploadStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}
	item.CreatedAt = item.CreatedAt.In(time.UTC)
	return &item, nil
}
