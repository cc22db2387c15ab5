package v1

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"starsoftflow/internal/importer"
	"starsoftflow/internal/model"
	"starsoftflow/internal/parser"
	"starsoftflow/internal/store"
	"starsoftflow/internal/workbook"
)

// ImportView 导入会话的对外视图
type ImportView struct {
	ID      string               `json:"id"`
	DraftID string               `json:"draftId"`
	State   importer.State       `json:"state"`
	Prompt  importer.Prompt      `json:"prompt"`
	Summary *model.ImportSummary `json:"summary,omitempty"`
	Error   string               `json:"error,omitempty"`
	Sheets  []workbook.SheetInfo `json:"sheets,omitempty"`
}

// ResolveResourceRequest 资源创建完成
type ResolveResourceRequest struct {
	Name       string `json:"name" binding:"required"`
	ResourceID string `json:"resourceId"`
}

// ResolveFinancingRequest 融资方案创建完成
type ResolveFinancingRequest struct {
	FinancingID string `json:"financingId"`
}

// StartImport 上传工作簿并开始导入
// POST /api/imports  (multipart: file, draftId)
func (h *Handler) StartImport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "未找到上传文件")
		return
	}
	if fh.Size > h.maxUpload {
		h.tooLarge(c)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		h.fail(c, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > h.maxUpload {
		h.tooLarge(c)
		return
	}

	draftID := strings.TrimSpace(c.DefaultPostForm("draftId", DefaultDraftID))
	if draftID == "" {
		draftID = DefaultDraftID
	}

	ctx := c.Request.Context()
	session := importer.NewSession(importer.Deps{
		Directory:  h.store,
		Financings: h.store,
		Sink:       h.store.DraftSink(draftID),
		Logger:     h.logger,
	})

	sum := sha256.Sum256(data)
	logID, err := h.store.CreateImportLog(ctx, session.ID(), draftID, fh.Filename, int64(len(data)), hex.EncodeToString(sum[:]))
	if err != nil {
		h.fail(c, err)
		return
	}

	e := &importEntry{session: session, draftID: draftID, logID: logID}
	e.mu.Lock()
	defer e.mu.Unlock()

	_, startErr := session.Start(ctx, bytes.NewReader(data), fh.Filename)
	h.recordSheets(ctx, e)
	h.settle(ctx, e)
	if startErr != nil {
		h.fail(c, startErr)
		return
	}

	h.sessions.put(e)
	c.JSON(http.StatusCreated, h.view(e))
}

// GetImport 查询导入会话
// GET /api/imports/:id
func (h *Handler) GetImport(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, e *importEntry) error {
		return nil
	})
}

// ImportEvents 以 SSE 形式回放会话进度事件
// GET /api/imports/:id/events
func (h *Handler) ImportEvents(c *gin.Context) {
	e, ok := h.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "导入会话不存在或已过期"})
		return
	}
	e.mu.Lock()
	events := e.session.Events()
	e.mu.Unlock()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
	}
	c.Writer.Flush()
}

// ResolveResource 外部表单创建了资源
// POST /api/imports/:id/resources
func (h *Handler) ResolveResource(c *gin.Context) {
	var req ResolveResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求参数")
		return
	}
	h.withSession(c, func(ctx context.Context, e *importEntry) error {
		_, err := e.session.Resolved(ctx, req.Name, req.ResourceID)
		return err
	})
}

// CancelImport 取消导入，已解析的内容全部丢弃
// POST /api/imports/:id/cancel
func (h *Handler) CancelImport(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, e *importEntry) error {
		_, err := e.session.Cancelled(ctx)
		return err
	})
}

// ResolveFinancing 外部表单创建了融资方案
// POST /api/imports/:id/financing
func (h *Handler) ResolveFinancing(c *gin.Context) {
	var req ResolveFinancingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求参数")
		return
	}
	h.withSession(c, func(ctx context.Context, e *importEntry) error {
		_, err := e.session.FinancingCreated(ctx, req.FinancingID)
		return err
	})
}

// SkipFinancing 不创建融资方案，继续导入
// POST /api/imports/:id/financing/skip
func (h *Handler) SkipFinancing(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, e *importEntry) error {
		_, err := e.session.FinancingCancelled(ctx)
		return err
	})
}

// ListImportLogs 最近的导入日志
// GET /api/import-logs
func (h *Handler) ListImportLogs(c *gin.Context) {
	logs, err := h.store.ListImportLogs(c.Request.Context(), 50)
	if err != nil {
		h.fail(c, err)
		return
	}
	if logs == nil {
		logs = []store.ImportLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// withSession 串行执行会话事件，结束后同步导入日志并返回最新视图
func (h *Handler) withSession(c *gin.Context, fn func(context.Context, *importEntry) error) {
	e, ok := h.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "导入会话不存在或已过期"})
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := c.Request.Context()
	err := fn(ctx, e)
	h.settle(ctx, e)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(e))
}

// settle 会话进入终态时写入导入日志，只写一次
func (h *Handler) settle(ctx context.Context, e *importEntry) {
	if e.logged {
		return
	}
	var (
		status string
		msg    string
	)
	switch e.session.State() {
	case importer.StateDone:
		status = store.ImportStatusDone
	case importer.StateIdle:
		status = store.ImportStatusCancelled
	case importer.StateError:
		status = store.ImportStatusError
		if err := e.session.Err(); err != nil {
			msg = err.Error()
		}
	default:
		return
	}
	e.logged = true
	if err := h.store.FinishImportLog(ctx, e.logID, status, e.session.Summary(), msg); err != nil {
		h.logger.Error("finish import log failed", "import_id", e.session.ID(), "error", err)
	}
}

func (h *Handler) recordSheets(ctx context.Context, e *importEntry) {
	sheets := e.session.Sheets()
	if len(sheets) == 0 {
		return
	}
	metas := make([]store.SheetMeta, 0, len(sheets))
	for _, s := range sheets {
		metas = append(metas, store.SheetMeta{
			SheetName:    s.Name,
			TotalRows:    s.Rows,
			TotalColumns: s.Columns,
			Recognized:   parser.KnownSheet(s.Name),
		})
	}
	if err := h.store.InsertSheetsMeta(ctx, e.logID, metas); err != nil {
		h.logger.Warn("record sheets meta failed", "import_id", e.session.ID(), "error", err)
	}
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("文件超过 %d MB", h.maxUpload>>20)})
}

func (h *Handler) view(e *importEntry) ImportView {
	v := ImportView{
		ID:      e.session.ID(),
		DraftID: e.draftID,
		State:   e.session.State(),
		Prompt:  e.session.Prompt(),
		Summary: e.session.Summary(),
		Sheets:  e.session.Sheets(),
	}
	if err := e.session.Err(); err != nil {
		v.Error = err.Error()
	}
	return v
}
