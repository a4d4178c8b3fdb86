package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetChecklist 当前生效的检查清单
// GET /api/checklist
func (h *Handler) GetChecklist(c *gin.Context) {
	c.JSON(http.StatusOK, h.checklist)
}
