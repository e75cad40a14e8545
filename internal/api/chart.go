package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"pantauharga/internal/chart"
	"pantauharga/internal/service/dashboard"
)

// Chart 过滤结果的价格走势图
// GET /api/chart.png?komoditi=..&tingkat=..&provinsi=..&start=..&end=..
// 默认选择前两个商品；没有数据时返回 404 和提示信息
func (h *Handler) Chart(c *gin.Context) {
	f, err := h.filterFromQuery(c, dashboard.ChartDefaultCommodities)
	if err != nil {
		abortWithError(c, err)
		return
	}
	rows, err := h.dash.Query(f)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, rows, chart.DefaultOptions()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
