package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"starsoftflow/internal/model"
)

// ListFinancings 获取融资方案目录
func (s *Store) ListFinancings(ctx context.Context) ([]model.Financing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, financing_rate, overhead_rate, eti_value
		FROM financings
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query financings failed: %w", err)
	}
	defer rows.Close()

	var out []model.Financing
	for rows.Next() {
		var f model.Financing
		if err := rows.Scan(&f.ID, &f.Name, &f.FinancingRate, &f.OverheadRate, &f.ETIValue); err != nil {
			return nil, fmt.Errorf("scan financing failed: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financings failed: %w", err)
	}
	return out, nil
}

// CreateFinancing 新建融资方案，标识为空时自动生成
func (s *Store) CreateFinancing(ctx context.Context, f model.Financing) (model.Financing, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return model.Financing{}, errors.New("financing name is required")
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financings (id, name, financing_rate, overhead_rate, eti_value)
		VALUES (?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.FinancingRate, f.OverheadRate, f.ETIValue)
	if err != nil {
		return model.Financing{}, fmt.Errorf("insert financing failed: %w", err)
	}
	return f, nil
}
