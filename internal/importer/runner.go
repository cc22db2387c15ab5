package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"starsoftflow/internal/model"
)

// Run 以阻塞方式驱动会话，交互步骤交给 resolver
// 资源创建被取消或失败时丢弃整个导入；融资创建被取消时继续导入
func Run(ctx context.Context, s *Session, r io.Reader, filename string, resolver Resolver) (*model.ImportSummary, error) {
	prompt, err := s.Start(ctx, r, filename)
	for err == nil {
		switch prompt.Kind {
		case PromptNone:
			if s.State() != StateDone {
				return nil, fmt.Errorf("import stopped in state %s", s.State())
			}
			return s.Summary(), nil

		case PromptCreateResource:
			id, rerr := resolver.CreateResource(ctx, *prompt.Resource)
			if rerr != nil {
				if _, cerr := s.Cancelled(ctx); cerr != nil {
					return nil, cerr
				}
				if errors.Is(rerr, ErrCancelled) {
					return nil, ErrCancelled
				}
				return nil, fmt.Errorf("create resource %q: %w", prompt.Resource.Name, rerr)
			}
			prompt, err = s.Resolved(ctx, prompt.Resource.Name, id)

		case PromptCreateFinancing:
			id, ferr := resolver.CreateFinancing(ctx, *prompt.Financing)
			switch {
			case errors.Is(ferr, ErrCancelled):
				prompt, err = s.FinancingCancelled(ctx)
			case ferr != nil:
				if _, cerr := s.Cancelled(ctx); cerr != nil {
					return nil, cerr
				}
				return nil, fmt.Errorf("create financing %q: %w", prompt.Financing.Name, ferr)
			default:
				prompt, err = s.FinancingCreated(ctx, id)
			}
		}
	}
	if st := s.State(); st == StateAwaitingResolution || st == StateAwaitingFinancing {
		_, _ = s.Cancelled(ctx)
	}
	return nil, err
}
