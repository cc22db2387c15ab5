package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"starsoftflow/internal/model"
)

// ListUsers 获取用户目录（按创建顺序）
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, salary, contracted
		FROM users
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query users failed: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var (
			u      model.User
			salary sql.NullFloat64
		)
		if err := rows.Scan(&u.ID, &u.DisplayName, &salary, &u.Contracted); err != nil {
			return nil, fmt.Errorf("scan user failed: %w", err)
		}
		u.Salary = nullFloat(salary)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users failed: %w", err)
	}
	return out, nil
}

// InsertUser 写入已有身份（标识由调用方给定）
func (s *Store) InsertUser(ctx context.Context, u model.User) error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.DisplayName) == "" {
		return errors.New("user id and name are required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, salary, contracted) VALUES (?, ?, ?, ?)
	`, u.ID, u.DisplayName, u.Salary, u.Contracted)
	if err != nil {
		return fmt.Errorf("insert user failed: %w", err)
	}
	return nil
}

// CreateContractedResource 创建合同制资源，返回带新标识的用户
func (s *Store) CreateContractedResource(ctx context.Context, name string, salary *float64) (model.User, error) {
	u := model.User{
		ID:          uuid.New().String(),
		DisplayName: strings.TrimSpace(name),
		Salary:      salary,
		Contracted:  true,
	}
	if err := s.InsertUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
