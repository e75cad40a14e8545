package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pantauharga/internal/model"
	"pantauharga/internal/service/dashboard"
	"pantauharga/internal/view"
)

// ObservationsResponse 过滤结果
type ObservationsResponse struct {
	Filter view.Filter         `json:"filter"`
	Count  int                 `json:"count"`
	Items  []model.Observation `json:"items"`
}

// ListObservations 合并视图过滤结果（按日期升序）
// GET /api/observations?komoditi=..&tingkat=..&provinsi=..&start=..&end=..
func (h *Handler) ListObservations(c *gin.Context) {
	f, err := h.filterFromQuery(c, dashboard.TableDefaultCommodities)
	if err != nil {
		abortWithError(c, err)
		return
	}
	rows, err := h.dash.Query(f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ObservationsResponse{Filter: f, Count: len(rows), Items: rows})
}

func (h *Handler) filterFromQuery(c *gin.Context, defaultCommodities int) (view.Filter, error) {
	defaults, err := h.dash.DefaultFilter(defaultCommodities)
	if err != nil {
		return view.Filter{}, err
	}
	return ParseFilter(c.Request.URL.Query(), defaults)
}
