package importer

import "errors"

var (
	// ErrInvalidTransition 当前状态不接受该事件
	ErrInvalidTransition = errors.New("invalid import transition")
	// ErrUnexpectedResource 解析结果对应的名称不是当前待处理的资源
	ErrUnexpectedResource = errors.New("resolved resource is not the one awaiting resolution")
	// ErrEmptyIdentifier 子流程返回了空标识
	ErrEmptyIdentifier = errors.New("empty identifier")
	// ErrCancelled 用户取消了子流程
	ErrCancelled = errors.New("import cancelled")
	// ErrUnresolvedResource 仍有资源未关联到用户，不能生成动作
	ErrUnresolvedResource = errors.New("unresolved resource")
)
