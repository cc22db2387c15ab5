package store

import (
	"context"
	"fmt"
)

// SheetMeta 导入文件中单个工作表的尺寸
type SheetMeta struct {
	SheetName    string `json:"sheetName"`
	TotalRows    int    `json:"totalRows"`
	TotalColumns int    `json:"totalColumns"`
	Recognized   bool   `json:"recognized"`
}

// InsertSheetsMeta 写入某次导入的工作表元信息
func (s *Store) InsertSheetsMeta(ctx context.Context, importLogID int64, metas []SheetMeta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sheets_meta failed: %w", err)
	}
	defer tx.Rollback()

	for _, m := range metas {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sheets_meta (import_log_id, sheet_name, total_rows, total_columns, recognized)
			VALUES (?, ?, ?, ?, ?)
		`, importLogID, m.SheetName, m.TotalRows, m.TotalColumns, m.Recognized); err != nil {
			return fmt.Errorf("failed to insert sheets_meta: %w", err)
		}
	}
	return tx.Commit()
}

// ListSheetsMeta 读取某次导入的工作表元信息
func (s *Store) ListSheetsMeta(ctx context.Context, importLogID int64) ([]SheetMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sheet_name, total_rows, total_columns, recognized
		FROM sheets_meta WHERE import_log_id = ? ORDER BY id
	`, importLogID)
	if err != nil {
		return nil, fmt.Errorf("query sheets_meta failed: %w", err)
	}
	defer rows.Close()

	var out []SheetMeta
	for rows.Next() {
		var m SheetMeta
		if err := rows.Scan(&m.SheetName, &m.TotalRows, &m.TotalColumns, &m.Recognized); err != nil {
			return nil, fmt.Errorf("scan sheets_meta failed: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
