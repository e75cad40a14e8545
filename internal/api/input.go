package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"pantauharga/internal/model"
)

// InputsResponse 录入数据列表
type InputsResponse struct {
	Count int                 `json:"count"`
	Items []model.Observation `json:"items"`
}

// ListInputs 全部录入数据（写入顺序）
// GET /api/input
func (h *Handler) ListInputs(c *gin.Context) {
	rows, err := h.dash.Inputs()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, InputsResponse{Count: len(rows), Items: rows})
}

// CreateInput 追加一条录入数据
// POST /api/input
func (h *Handler) CreateInput(c *gin.Context) {
	var o model.Observation
	if err := c.ShouldBindJSON(&o); err != nil {
		abortWithError(c, eris.Wrapf(ErrBadRequest, "invalid body: %v", err))
		return
	}
	if err := h.dash.AddInput(o); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Data berhasil disimpan.", "item": o})
}
