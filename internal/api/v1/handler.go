package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/matcapl/portco-board-assistant/internal/config"
	"github.com/matcapl/portco-board-assistant/internal/model"
	"github.com/matcapl/portco-board-assistant/internal/store"
)

// Options Handler 依赖的配置项
type Options struct {
	Upload  config.UploadConfig
	TempDir string
	Version string
}

// Handler V1 API 处理器
type Handler struct {
	checklist *model.Checklist
	store     *store.Store // 审计日志关闭时为 nil
	upload    config.UploadConfig
	tempDir   string
	version   string
}

// NewHandler 创建 V1 API 处理器；checklist 应已通过校验
func NewHandler(checklist *model.Checklist, st *store.Store, opts Options) *Handler {
	return &Handler{
		checklist: checklist,
		store:     st,
		upload:    opts.Upload,
		tempDir:   opts.TempDir,
		version:   opts.Version,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 检查清单
	router.GET("/checklist", h.GetChecklist)

	// 上传分析
	router.POST("/analyze", h.Analyze)

	// 上传审计
	router.GET("/uploads", h.ListUploads)
}
