package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"starsoftflow/internal/model"
	"starsoftflow/internal/parser"
	"starsoftflow/internal/workbook"
)

// State 导入会话状态
type State string

const (
	StateIdle               State = "idle"
	StateExtracting         State = "extracting"
	StateAwaitingResolution State = "awaiting_resolution"
	StateAwaitingFinancing  State = "awaiting_financing"
	StateFinalizing         State = "finalizing"
	StateDone               State = "done"
	StateError              State = "error"
)

// PromptKind 需要界面完成的下一步操作
type PromptKind string

const (
	PromptNone            PromptKind = "none"
	PromptCreateResource  PromptKind = "create_resource"
	PromptCreateFinancing PromptKind = "create_financing"
)

// Prompt 会话挂起时交给界面的内容；同一时刻最多一个
type Prompt struct {
	Kind      PromptKind            `json:"kind"`
	Resource  *PendingResource      `json:"resource,omitempty"`
	Financing *model.FinancingTerms `json:"financing,omitempty"`
	Remaining int                   `json:"remaining"`
}

// Event 会话进度事件
type Event struct {
	Type      string    `json:"type"` // start/info/warning/prompt/done/cancelled/error
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Deps 会话依赖的外部协作方
type Deps struct {
	Directory  Directory
	Financings FinancingCatalog
	Sink       Sink
	Logger     *slog.Logger
}

// Session 导入状态机
// Idle -> Extracting -> AwaitingResolution -> AwaitingFinancing -> Finalizing -> Done，
// 任意状态都可能进入 Error。会话本身不做并发保护，由调用方保证串行。
type Session struct {
	id     string
	deps   Deps
	logger *slog.Logger

	state   State
	st      *ImportState
	queue   []PendingResource
	created int
	summary *model.ImportSummary
	sheets  []workbook.SheetInfo
	lastErr error
	events  []Event
}

// NewSession 创建空闲会话
func NewSession(deps Deps) *Session {
	id := uuid.New().String()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:     id,
		deps:   deps,
		logger: logger.With("import_id", id),
		state:  StateIdle,
	}
}

// ID 会话标识
func (s *Session) ID() string { return s.id }

// State 当前状态
func (s *Session) State() State { return s.state }

// Summary 完成后的统计，未完成时为 nil
func (s *Session) Summary() *model.ImportSummary { return s.summary }

// Sheets 最近一次读取的工作簿各表尺寸
func (s *Session) Sheets() []workbook.SheetInfo { return s.sheets }

// Err 进入 Error 状态的原因
func (s *Session) Err() error { return s.lastErr }

// Events 进度事件（副本）
func (s *Session) Events() []Event {
	return append([]Event(nil), s.events...)
}

// Prompt 当前挂起点
func (s *Session) Prompt() Prompt {
	switch s.state {
	case StateAwaitingResolution:
		head := s.queue[0]
		return Prompt{Kind: PromptCreateResource, Resource: &head, Remaining: len(s.queue)}
	case StateAwaitingFinancing:
		terms := s.st.Financing
		return Prompt{Kind: PromptCreateFinancing, Financing: &terms, Remaining: 1}
	default:
		return Prompt{Kind: PromptNone}
	}
}

// Start 读取并解析工作簿，进入对账流程；新的导入总是从干净状态开始
func (s *Session) Start(ctx context.Context, r io.Reader, filename string) (Prompt, error) {
	switch s.state {
	case StateIdle, StateDone, StateError:
	default:
		return s.invalid("start")
	}

	s.discard()
	s.summary = nil
	s.sheets = nil
	s.lastErr = nil
	s.events = nil
	s.created = 0

	s.transition(StateExtracting)
	s.emit("start", fmt.Sprintf("开始导入 %s", filename))

	wb, err := workbook.Read(r, filename)
	if err != nil {
		return s.fail(err)
	}
	s.sheets = wb.Describe()

	ex := parser.Extract(wb)
	st := &ImportState{
		Filename:     filename,
		RawSheets:    wb,
		ProjectName:  ex.ProjectName,
		Financing:    ex.Financing,
		Materials:    ex.Materials,
		ProjectStart: ex.ProjectStart,
		ProjectEnd:   ex.ProjectEnd,
		ResolvedMap:  make(map[string]string),
		SkippedRows:  ex.SkippedRows,
	}
	if ex.SkippedRows > 0 {
		s.logger.Debug("skipped malformed rows", "rows", ex.SkippedRows)
	}

	wps, fallbacks := AssignMaterials(ex.Workpackages, ex.Materials)
	st.FallbackMaterials = len(fallbacks)
	for _, m := range fallbacks {
		s.logger.Warn("material attached to first workpackage", "material", m.Name, "activity", m.WorkpackageRef)
		s.emit("warning", fmt.Sprintf("材料 %q 的活动 %q 未匹配到工作包，已归入 %s", m.Name, m.WorkpackageRef, wps[0].Code))
	}

	users, err := s.deps.Directory.ListUsers(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("list users: %w", err))
	}
	rec := Reconcile(wps, users)
	st.Workpackages = rec.Workpackages
	st.PendingUnmatched = rec.Unmatched
	s.st = st

	s.emit("info", fmt.Sprintf("识别 %d 个工作包、%d 项材料，%d 个资源待创建",
		len(st.Workpackages), len(st.Materials), len(rec.Unmatched)))

	if len(rec.Unmatched) > 0 {
		s.queue = append([]PendingResource(nil), rec.Unmatched...)
		s.transition(StateAwaitingResolution)
		return s.prompt(), nil
	}
	return s.afterResolution(ctx)
}

// Resolved 外部子流程为当前资源创建了新标识
func (s *Session) Resolved(ctx context.Context, name, id string) (Prompt, error) {
	if s.state != StateAwaitingResolution {
		return s.invalid("resolved")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return s.Prompt(), ErrEmptyIdentifier
	}
	if head := s.queue[0].Name; name != head {
		return s.Prompt(), fmt.Errorf("%w: got %q, awaiting %q", ErrUnexpectedResource, name, head)
	}

	s.st.ResolvedMap[name] = id
	s.created++
	s.queue = s.queue[1:]
	s.logger.Debug("resource resolved", "name", name, "id", id, "remaining", len(s.queue))

	if len(s.queue) > 0 {
		return s.prompt(), nil
	}
	return s.afterResolution(ctx)
}

// Cancelled 用户取消了子流程：丢弃整个导入，回到 Idle
func (s *Session) Cancelled(ctx context.Context) (Prompt, error) {
	switch s.state {
	case StateAwaitingResolution, StateAwaitingFinancing:
	default:
		return s.invalid("cancelled")
	}
	s.logger.Info("import cancelled", "state", s.state)
	s.discard()
	s.transition(StateIdle)
	s.emit("cancelled", "导入已取消，未写入任何数据")
	return s.Prompt(), nil
}

// FinancingCreated 外部子流程创建了融资方案
func (s *Session) FinancingCreated(ctx context.Context, id string) (Prompt, error) {
	if s.state != StateAwaitingFinancing {
		return s.invalid("financing_created")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return s.Prompt(), ErrEmptyIdentifier
	}
	s.st.FinancingID = id
	return s.finalize(ctx)
}

// FinancingCancelled 放弃创建融资方案；导入继续，不关联融资
func (s *Session) FinancingCancelled(ctx context.Context) (Prompt, error) {
	if s.state != StateAwaitingFinancing {
		return s.invalid("financing_cancelled")
	}
	s.emit("warning", "未关联融资方案，可稍后在项目中设置")
	return s.finalize(ctx)
}

// afterResolution 回填资源标识，然后处理融资方案
func (s *Session) afterResolution(ctx context.Context) (Prompt, error) {
	s.st.applyResolved()

	name := s.st.Financing.Name
	if strings.TrimSpace(name) == "" {
		return s.finalize(ctx)
	}

	catalog, err := s.deps.Financings.ListFinancings(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("list financings: %w", err))
	}
	if f, ok := MatchFinancing(name, catalog); ok {
		s.st.FinancingID = f.ID
		return s.finalize(ctx)
	}

	s.transition(StateAwaitingFinancing)
	return s.prompt(), nil
}

func (s *Session) finalize(ctx context.Context) (Prompt, error) {
	s.transition(StateFinalizing)

	actions, err := Finalize(s.st)
	if err != nil {
		return s.fail(err)
	}
	if err := Dispatch(ctx, s.deps.Sink, actions); err != nil {
		return s.fail(err)
	}

	s.summary = summarize(s.st, actions, s.created)
	s.discard()
	s.transition(StateDone)
	s.logger.Info("import finished",
		"workpackages", s.summary.Workpackages,
		"allocations", s.summary.Allocations,
		"materials", s.summary.Materials,
		"actions", s.summary.Actions)
	s.emit("done", "导入完成")
	return s.Prompt(), nil
}

func (s *Session) prompt() Prompt {
	p := s.Prompt()
	switch p.Kind {
	case PromptCreateResource:
		s.emit("prompt", fmt.Sprintf("需要创建资源 %q", p.Resource.Name))
	case PromptCreateFinancing:
		s.emit("prompt", fmt.Sprintf("需要创建融资方案 %q", p.Financing.Name))
	}
	return p
}

func (s *Session) fail(err error) (Prompt, error) {
	s.lastErr = err
	s.discard()
	s.transition(StateError)
	s.logger.Error("import failed", "error", err)
	s.emit("error", err.Error())
	return s.Prompt(), err
}

func (s *Session) invalid(event string) (Prompt, error) {
	return s.Prompt(), fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, s.state)
}

func (s *Session) discard() {
	s.st = nil
	s.queue = nil
}

func (s *Session) transition(next State) {
	s.logger.Debug("import transition", "from", s.state, "to", next)
	s.state = next
}

func (s *Session) emit(typ, msg string) {
	s.events = append(s.events, Event{Type: typ, Message: msg, Timestamp: time.Now()})
}
