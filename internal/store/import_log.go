package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"starsoftflow/internal/model"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusDone       = "done"
	ImportStatusCancelled  = "cancelled"
	ImportStatusError      = "error"
)

// ImportLog 导入日志记录
type ImportLog struct {
	ID               int64      `json:"id"`
	ImportID         string     `json:"importId"`
	DraftID          string     `json:"draftId"`
	Filename         string     `json:"filename"`
	FileSize         int64      `json:"fileSize"`
	FileHash         string     `json:"fileHash"`
	Status           string     `json:"status"`
	Workpackages     int        `json:"workpackages"`
	Allocations      int        `json:"allocations"`
	Materials        int        `json:"materials"`
	CreatedResources int        `json:"createdResources"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, importID, draftID, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (import_id, draft_id, filename, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, importID, draftID, filename, fileSize, fileHash, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// FinishImportLog 写入导入结果；summary 可为空
func (s *Store) FinishImportLog(ctx context.Context, id int64, status string, summary *model.ImportSummary, errorMessage string) error {
	var sum model.ImportSummary
	if summary != nil {
		sum = *summary
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			status = ?,
			workpackages = ?,
			allocations = ?,
			materials = ?,
			created_resources = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, sum.Workpackages, sum.Allocations, sum.Materials, sum.CreatedResources, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志，新的在前
func (s *Store) ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, import_id, draft_id, filename, file_size, file_hash, status,
			workpackages, allocations, materials, created_resources, error_message,
			started_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import logs failed: %w", err)
	}
	defer rows.Close()

	var out []ImportLog
	for rows.Next() {
		var (
			it        ImportLog
			completed sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.ImportID, &it.DraftID, &it.Filename, &it.FileSize, &it.FileHash, &it.Status,
			&it.Workpackages, &it.Allocations, &it.Materials, &it.CreatedResources, &it.ErrorMessage,
			&it.StartedAt, &completed); err != nil {
			return nil, fmt.Errorf("scan import log failed: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			it.CompletedAt = &t
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
