package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"starsoftflow/internal/model"
	"starsoftflow/internal/parser"
)

// CreateResourceRequest 新建合同制资源
type CreateResourceRequest struct {
	Name   string   `json:"name" binding:"required"`
	Salary *float64 `json:"salary"`
}

// CreateFinancingRequest 新建融资方案
type CreateFinancingRequest struct {
	Name          string  `json:"name" binding:"required"`
	FinancingRate float64 `json:"financingRate"`
	OverheadRate  float64 `json:"overheadRate"`
	ETIValue      float64 `json:"etiValue"`
}

// ListResources 用户目录
// GET /api/resources
func (h *Handler) ListResources(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}

// CreateResource 创建合同制资源，返回新标识
// POST /api/resources
func (h *Handler) CreateResource(c *gin.Context) {
	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "资源名称不能为空")
		return
	}
	if req.Salary != nil && *req.Salary < 0 {
		badRequest(c, "薪资不能为负数")
		return
	}
	u, err := h.store.CreateContractedResource(c.Request.Context(), req.Name, req.Salary)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// ListFinancings 融资方案目录
// GET /api/financings
func (h *Handler) ListFinancings(c *gin.Context) {
	list, err := h.store.ListFinancings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []model.Financing{}
	}
	c.JSON(http.StatusOK, list)
}

// CreateFinancing 创建融资方案
// POST /api/financings
func (h *Handler) CreateFinancing(c *gin.Context) {
	var req CreateFinancingRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "融资方案名称不能为空")
		return
	}
	f, err := h.store.CreateFinancing(c.Request.Context(), model.Financing{
		Name:          req.Name,
		FinancingRate: req.FinancingRate,
		OverheadRate:  req.OverheadRate,
		ETIValue:      req.ETIValue,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GetDraft 项目草稿快照
// GET /api/drafts/:id
func (h *Handler) GetDraft(c *gin.Context) {
	d, err := h.store.LoadDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DownloadTemplate 下载示例工作簿
// GET /api/template?start=2025-01
func (h *Handler) DownloadTemplate(c *gin.Context) {
	start := model.MonthYear{Month: 1, Year: time.Now().Year()}
	if v := c.Query("start"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			badRequest(c, "start 格式应为 YYYY-MM")
			return
		}
		start = model.MonthYear{Month: int(t.Month()), Year: t.Year()}
	}

	f, err := parser.BuildTemplate(start)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("budget-template-%04d-%02d.xlsx", start.Year, start.Month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("write template failed", "error", err)
	}
}
