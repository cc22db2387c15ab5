package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"starsoftflow/internal/importer"
	"starsoftflow/internal/store"
	"starsoftflow/internal/workbook"
)

// DefaultDraftID 未指定草稿时导入的目标
const DefaultDraftID = "default"

// Options 处理器参数
type Options struct {
	SessionTTL     time.Duration
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Handler V1 API 处理器
type Handler struct {
	store     *store.Store
	sessions  *sessionRegistry
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, opts Options) *Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := &Handler{
		store:     st,
		maxUpload: opts.MaxUploadBytes,
		logger:    opts.Logger,
	}
	h.sessions = newSessionRegistry(opts.SessionTTL, h.expireSession)
	return h
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	// 导入会话
	router.POST("/imports", h.StartImport)
	router.GET("/imports/:id", h.GetImport)
	router.GET("/imports/:id/events", h.ImportEvents)
	router.POST("/imports/:id/resources", h.ResolveResource)
	router.POST("/imports/:id/cancel", h.CancelImport)
	router.POST("/imports/:id/financing", h.ResolveFinancing)
	router.POST("/imports/:id/financing/skip", h.SkipFinancing)
	router.GET("/import-logs", h.ListImportLogs)

	// 目录
	router.GET("/resources", h.ListResources)
	router.POST("/resources", h.CreateResource)
	router.GET("/financings", h.ListFinancings)
	router.POST("/financings", h.CreateFinancing)

	// 草稿与模板
	router.GET("/drafts/:id", h.GetDraft)
	router.GET("/template", h.DownloadTemplate)
}

// StatusResponse 系统状态
type StatusResponse struct {
	ActiveImports int    `json:"activeImports"`
	LastImport    string `json:"lastImport"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{ActiveImports: h.sessions.size()}
	if logs, err := h.store.ListImportLogs(c.Request.Context(), 1); err == nil && len(logs) > 0 {
		resp.LastImport = logs[0].StartedAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// statusFor 错误到 HTTP 状态码的映射
func statusFor(err error) int {
	var unreadable *workbook.UnreadableFileError
	switch {
	case errors.As(err, &unreadable), errors.Is(err, importer.ErrEmptyIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, importer.ErrInvalidTransition), errors.Is(err, importer.ErrUnexpectedResource):
		return http.StatusConflict
	case errors.Is(err, store.ErrDraftNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// expireSession 过期会话按取消处理，避免留下悬挂的导入日志
func (h *Handler) expireSession(e *importEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := context.Background()
	switch e.session.State() {
	case importer.StateAwaitingResolution, importer.StateAwaitingFinancing:
		_, _ = e.session.Cancelled(ctx)
	}
	h.settle(ctx, e)
	h.logger.Info("import session expired", "import_id", e.session.ID(), "state", e.session.State())
}
