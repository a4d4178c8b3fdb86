package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	ChecklistVersion string `json:"checklistVersion"`
	Metrics          int    `json:"metrics"`  // 检查清单中的指标数
	AuditLog         bool   `json:"auditLog"` // 是否启用上传审计
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:   "ok",
		Version:  h.version,
		AuditLog: h.store != nil,
	}
	if h.checklist != nil {
		resp.ChecklistVersion = h.checklist.Version
		resp.Metrics = len(h.checklist.Metrics)
	}
	c.JSON(http.StatusOK, resp)
}
