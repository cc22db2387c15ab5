package importer

import (
	"context"

	"starsoftflow/internal/model"
)

// Directory 用户目录（按显示名称查找已知身份）
type Directory interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

// FinancingCatalog 融资方案目录
type FinancingCatalog interface {
	ListFinancings(ctx context.Context) ([]model.Financing, error)
}

// Sink 项目草稿存储，按顺序接收动作；后续校验与持久化由实现方负责
type Sink interface {
	Reset(ctx context.Context) error
	UpdateProject(ctx context.Context, patch model.ProjectPatch) error
	AddWorkpackage(ctx context.Context, wp model.WorkpackageAction) error
	AddAllocation(ctx context.Context, alloc model.AllocationAction) error
	AddMaterial(ctx context.Context, m model.MaterialAction) error
}

// Batcher Sink 的可选能力：一次派发整体提交，失败时整体回滚
type Batcher interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
}

// Resolver 阻塞式交互子流程（CLI 使用）；返回 ErrCancelled 表示用户取消
type Resolver interface {
	CreateResource(ctx context.Context, pending PendingResource) (string, error)
	CreateFinancing(ctx context.Context, terms model.FinancingTerms) (string, error)
}
