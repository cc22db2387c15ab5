package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"starsoftflow/internal/model"
)

// MemoryStore 内存版用户目录、融资目录与项目草稿存储
type MemoryStore struct {
	mu         sync.RWMutex
	users      []model.User
	financings []model.Financing
	draft      model.ProjectDraft
	index      map[string]int
	actions    []model.Action
	batch      *memoryBatch
}

// memoryBatch Begin 时的草稿快照
type memoryBatch struct {
	draft   model.ProjectDraft
	index   map[string]int
	actions int
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string]int),
	}
}

// AddUser 登记已知用户
func (s *MemoryStore) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// AddFinancing 登记已知融资方案
func (s *MemoryStore) AddFinancing(f model.Financing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.financings = append(s.financings, f)
}

// ListUsers 获取全部用户
func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.users...), nil
}

// ListFinancings 获取全部融资方案
func (s *MemoryStore) ListFinancings(ctx context.Context) ([]model.Financing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Financing(nil), s.financings...), nil
}

// CreateContractedResource 创建合同制资源并返回新用户
func (s *MemoryStore) CreateContractedResource(ctx context.Context, name string, salary *float64) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, errors.New("name is required")
	}
	u := model.User{
		ID:          uuid.New().String(),
		DisplayName: name,
		Contracted:  true,
	}
	if salary != nil {
		v := *salary
		u.Salary = &v
	}
	s.AddUser(u)
	return u, nil
}

// CreateFinancing 创建融资方案并返回新条目
func (s *MemoryStore) CreateFinancing(ctx context.Context, f model.Financing) (model.Financing, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return model.Financing{}, errors.New("name is required")
	}
	f.ID = uuid.New().String()
	s.AddFinancing(f)
	return f, nil
}

// Begin 记录草稿快照，Rollback 时恢复
func (s *MemoryStore) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batch != nil {
		return errors.New("dispatch already in progress")
	}
	index := make(map[string]int, len(s.index))
	for k, v := range s.index {
		index[k] = v
	}
	s.batch = &memoryBatch{draft: s.copyDraft(), index: index, actions: len(s.actions)}
	return nil
}

// Commit 保留批次内的修改
func (s *MemoryStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batch == nil {
		return errors.New("no dispatch in progress")
	}
	s.batch = nil
	return nil
}

// Rollback 恢复到 Begin 时的草稿
func (s *MemoryStore) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batch == nil {
		return nil
	}
	s.draft = s.batch.draft
	s.index = s.batch.index
	s.actions = s.actions[:s.batch.actions]
	s.batch = nil
	return nil
}

// Reset 清空项目草稿
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = model.ProjectDraft{}
	s.index = make(map[string]int)
	s.actions = append(s.actions, model.Action{Kind: model.ActionReset})
	return nil
}

// UpdateProject 更新项目字段
func (s *MemoryStore) UpdateProject(ctx context.Context, patch model.ProjectPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Project = patch
	s.actions = append(s.actions, model.Action{Kind: model.ActionUpdateProject, Project: &patch})
	return nil
}

// AddWorkpackage 新增工作包
func (s *MemoryStore) AddWorkpackage(ctx context.Context, wp model.WorkpackageAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[wp.Key]; ok {
		return fmt.Errorf("workpackage %s already exists", wp.Key)
	}
	s.index[wp.Key] = len(s.draft.Workpackages)
	s.draft.Workpackages = append(s.draft.Workpackages, model.DraftWorkpackage{WorkpackageAction: wp})
	s.actions = append(s.actions, model.Action{Kind: model.ActionAddWorkpackage, Workpackage: &wp})
	return nil
}

// AddAllocation 新增资源分配，所属工作包必须已存在
func (s *MemoryStore) AddAllocation(ctx context.Context, alloc model.AllocationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[alloc.WorkpackageKey]
	if !ok {
		return fmt.Errorf("workpackage %s not found", alloc.WorkpackageKey)
	}
	wp := &s.draft.Workpackages[idx]
	wp.Allocations = append(wp.Allocations, alloc)
	s.actions = append(s.actions, model.Action{Kind: model.ActionAddAllocation, Allocation: &alloc})
	return nil
}

// AddMaterial 新增材料，所属工作包必须已存在
func (s *MemoryStore) AddMaterial(ctx context.Context, m model.MaterialAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[m.WorkpackageKey]
	if !ok {
		return fmt.Errorf("workpackage %s not found", m.WorkpackageKey)
	}
	wp := &s.draft.Workpackages[idx]
	wp.Materials = append(wp.Materials, m)
	s.actions = append(s.actions, model.Action{Kind: model.ActionAddMaterial, Material: &m})
	return nil
}

// Draft 当前草稿快照
func (s *MemoryStore) Draft() model.ProjectDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyDraft()
}

func (s *MemoryStore) copyDraft() model.ProjectDraft {
	out := model.ProjectDraft{ID: s.draft.ID, Project: s.draft.Project}
	for _, wp := range s.draft.Workpackages {
		wp.Allocations = append([]model.AllocationAction(nil), wp.Allocations...)
		wp.Materials = append([]model.MaterialAction(nil), wp.Materials...)
		out.Workpackages = append(out.Workpackages, wp)
	}
	return out
}

// Actions 收到的全部动作（按顺序）
func (s *MemoryStore) Actions() []model.Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Action(nil), s.actions...)
}
