package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"starsoftflow/internal/model"
)

const dateLayout = "2006-01-02"

// ErrDraftNotFound 草稿不存在
var ErrDraftNotFound = errors.New("draft not found")

// DraftSink 把导入动作写入某个项目草稿。
// Begin 之后的动作都在同一事务内，直到 Commit 或 Rollback
type DraftSink struct {
	store   *Store
	draftID string
	tx      *sql.Tx
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DraftSink 返回绑定到 draftID 的写入器
func (s *Store) DraftSink(draftID string) *DraftSink {
	return &DraftSink{store: s, draftID: draftID}
}

// DraftID 绑定的草稿
func (d *DraftSink) DraftID() string { return d.draftID }

// Begin 开启派发事务
func (d *DraftSink) Begin(ctx context.Context) error {
	if d.tx != nil {
		return fmt.Errorf("draft %s: dispatch already in progress", d.draftID)
	}
	tx, err := d.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dispatch failed: %w", err)
	}
	d.tx = tx
	return nil
}

// Commit 提交派发事务
func (d *DraftSink) Commit() error {
	if d.tx == nil {
		return fmt.Errorf("draft %s: no dispatch in progress", d.draftID)
	}
	tx := d.tx
	d.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft %s failed: %w", d.draftID, err)
	}
	return nil
}

// Rollback 放弃派发事务；没有进行中的事务时不做任何事
func (d *DraftSink) Rollback() error {
	if d.tx == nil {
		return nil
	}
	tx := d.tx
	d.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback draft %s failed: %w", d.draftID, err)
	}
	return nil
}

func (d *DraftSink) exec() execer {
	if d.tx != nil {
		return d.tx
	}
	return d.store.db
}

// Reset 清空草稿已有的工作包、分配与材料，项目字段置空
func (d *DraftSink) Reset(ctx context.Context) error {
	if d.tx != nil {
		return resetDraft(ctx, d.tx, d.draftID)
	}

	tx, err := d.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset failed: %w", err)
	}
	defer tx.Rollback()

	if err := resetDraft(ctx, tx, d.draftID); err != nil {
		return err
	}
	return tx.Commit()
}

func resetDraft(ctx context.Context, x execer, draftID string) error {
	for _, q := range []string{
		`DELETE FROM draft_materials WHERE draft_id = ?`,
		`DELETE FROM draft_allocations WHERE draft_id = ?`,
		`DELETE FROM draft_workpackages WHERE draft_id = ?`,
		`DELETE FROM project_drafts WHERE id = ?`,
	} {
		if _, err := x.ExecContext(ctx, q, draftID); err != nil {
			return fmt.Errorf("reset draft %s failed: %w", draftID, err)
		}
	}
	if _, err := x.ExecContext(ctx, `INSERT INTO project_drafts (id) VALUES (?)`, draftID); err != nil {
		return fmt.Errorf("recreate draft %s failed: %w", draftID, err)
	}
	return nil
}

// UpdateProject 写入项目字段
func (d *DraftSink) UpdateProject(ctx context.Context, p model.ProjectPatch) error {
	res, err := d.exec().ExecContext(ctx, `
		UPDATE project_drafts SET
			name = ?,
			start_date = ?,
			end_date = ?,
			financing_id = ?,
			financing_rate = ?,
			overhead_rate = ?,
			eti_value = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, formatDate(p.Start), formatDate(p.End), nullString(p.FinancingID),
		p.FinancingRate, p.OverheadRate, p.ETIValue, d.draftID)
	if err != nil {
		return fmt.Errorf("update project failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, d.draftID)
	}
	return nil
}

// AddWorkpackage 新增工作包，键在草稿内唯一
func (d *DraftSink) AddWorkpackage(ctx context.Context, wp model.WorkpackageAction) error {
	_, err := d.exec().ExecContext(ctx, `
		INSERT INTO draft_workpackages (draft_id, wp_key, name, start_date, end_date, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COUNT(1) FROM draft_workpackages WHERE draft_id = ?))
	`, d.draftID, wp.Key, wp.Name, formatDate(wp.Start), formatDate(wp.End), d.draftID)
	if err != nil {
		return fmt.Errorf("add workpackage %s failed: %w", wp.Key, err)
	}
	return nil
}

// AddAllocation 新增分配，所属工作包必须已存在
func (d *DraftSink) AddAllocation(ctx context.Context, a model.AllocationAction) error {
	res, err := d.exec().ExecContext(ctx, `
		INSERT INTO draft_allocations (draft_id, wp_key, resource_id, month, year, occupancy)
		SELECT draft_id, wp_key, ?, ?, ?, ?
		FROM draft_workpackages WHERE draft_id = ? AND wp_key = ?
	`, a.ResourceID, a.Month, a.Year, int64(a.Occupancy), d.draftID, a.WorkpackageKey)
	if err != nil {
		return fmt.Errorf("add allocation failed: %w", err)
	}
	return requireWorkpackage(res, a.WorkpackageKey)
}

// AddMaterial 新增材料，所属工作包必须已存在
func (d *DraftSink) AddMaterial(ctx context.Context, m model.MaterialAction) error {
	res, err := d.exec().ExecContext(ctx, `
		INSERT INTO draft_materials (draft_id, wp_key, name, unit_price, quantity, year, category)
		SELECT draft_id, wp_key, ?, ?, ?, ?, ?
		FROM draft_workpackages WHERE draft_id = ? AND wp_key = ?
	`, m.Name, m.UnitPrice, m.Quantity, m.Year, string(m.Category), d.draftID, m.WorkpackageKey)
	if err != nil {
		return fmt.Errorf("add material failed: %w", err)
	}
	return requireWorkpackage(res, m.WorkpackageKey)
}

// LoadDraft 读取草稿快照；工作包按写入顺序
func (s *Store) LoadDraft(ctx context.Context, draftID string) (model.ProjectDraft, error) {
	out := model.ProjectDraft{ID: draftID}

	var (
		start, end, financingID         sql.NullString
		financingRate, overhead, etiVal sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, start_date, end_date, financing_id, financing_rate, overhead_rate, eti_value
		FROM project_drafts WHERE id = ?
	`, draftID).Scan(&out.Project.Name, &start, &end, &financingID, &financingRate, &overhead, &etiVal)
	if errors.Is(err, sql.ErrNoRows) {
		return out, fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
	}
	if err != nil {
		return out, fmt.Errorf("query draft failed: %w", err)
	}
	out.Project.Start = parseDate(start)
	out.Project.End = parseDate(end)
	out.Project.FinancingID = financingID.String
	out.Project.FinancingRate = nullFloat(financingRate)
	out.Project.OverheadRate = nullFloat(overhead)
	out.Project.ETIValue = nullFloat(etiVal)

	if out.Workpackages, err = s.loadWorkpackages(ctx, draftID); err != nil {
		return out, err
	}
	index := make(map[string]int, len(out.Workpackages))
	for i, wp := range out.Workpackages {
		index[wp.Key] = i
	}

	allocs, err := s.loadAllocations(ctx, draftID)
	if err != nil {
		return out, err
	}
	for _, a := range allocs {
		wp := &out.Workpackages[index[a.WorkpackageKey]]
		wp.Allocations = append(wp.Allocations, a)
	}

	mats, err := s.loadMaterials(ctx, draftID)
	if err != nil {
		return out, err
	}
	for _, m := range mats {
		wp := &out.Workpackages[index[m.WorkpackageKey]]
		wp.Materials = append(wp.Materials, m)
	}
	return out, nil
}

// 单连接下每个查询必须在下一个查询前关闭结果集
func (s *Store) loadWorkpackages(ctx context.Context, draftID string) ([]model.DraftWorkpackage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wp_key, name, start_date, end_date
		FROM draft_workpackages WHERE draft_id = ? ORDER BY position
	`, draftID)
	if err != nil {
		return nil, fmt.Errorf("query workpackages failed: %w", err)
	}
	defer rows.Close()

	var out []model.DraftWorkpackage
	for rows.Next() {
		var (
			wp     model.DraftWorkpackage
			ws, we sql.NullString
		)
		if err := rows.Scan(&wp.Key, &wp.Name, &ws, &we); err != nil {
			return nil, fmt.Errorf("scan workpackage failed: %w", err)
		}
		wp.Start, wp.End = parseDate(ws), parseDate(we)
		out = append(out, wp)
	}
	return out, rows.Err()
}

func (s *Store) loadAllocations(ctx context.Context, draftID string) ([]model.AllocationAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wp_key, resource_id, month, year, occupancy
		FROM draft_allocations WHERE draft_id = ? ORDER BY id
	`, draftID)
	if err != nil {
		return nil, fmt.Errorf("query allocations failed: %w", err)
	}
	defer rows.Close()

	var out []model.AllocationAction
	for rows.Next() {
		var (
			a   model.AllocationAction
			occ int64
		)
		if err := rows.Scan(&a.WorkpackageKey, &a.ResourceID, &a.Month, &a.Year, &occ); err != nil {
			return nil, fmt.Errorf("scan allocation failed: %w", err)
		}
		a.Occupancy = model.Occupancy(occ)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) loadMaterials(ctx context.Context, draftID string) ([]model.MaterialAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wp_key, name, unit_price, quantity, year, category
		FROM draft_materials WHERE draft_id = ? ORDER BY id
	`, draftID)
	if err != nil {
		return nil, fmt.Errorf("query materials failed: %w", err)
	}
	defer rows.Close()

	var out []model.MaterialAction
	for rows.Next() {
		var (
			m   model.MaterialAction
			cat string
		)
		if err := rows.Scan(&m.WorkpackageKey, &m.Name, &m.UnitPrice, &m.Quantity, &m.Year, &cat); err != nil {
			return nil, fmt.Errorf("scan material failed: %w", err)
		}
		m.Category = model.Category(cat)
		out = append(out, m)
	}
	return out, rows.Err()
}

func requireWorkpackage(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("workpackage %s not found", key)
	}
	return nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
