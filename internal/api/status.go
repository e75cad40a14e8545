package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	st, err := h.dash.Status()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ClearCache 清空数据源缓存，下次访问重新读取 Excel
// POST /api/cache/clear
func (h *Handler) ClearCache(c *gin.Context) {
	h.dash.ClearCache()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// GetChoices 参考数据
// GET /api/choices
func (h *Handler) GetChoices(c *gin.Context) {
	ref, err := h.dash.ReferenceSet()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}
