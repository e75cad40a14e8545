// Package api JSON 接口
package api

import (
	"github.com/gin-gonic/gin"

	"pantauharga/internal/service/dashboard"
)

// Handler API 处理器
type Handler struct {
	dash      *dashboard.Dashboard
	exportDir string
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器；exportDir 为导出文件目录
func NewHandler(dash *dashboard.Dashboard, exportDir string) *Handler {
	return &Handler{
		dash:      dash,
		exportDir: exportDir,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.POST("/cache/clear", h.ClearCache)

	// 参考数据
	router.GET("/choices", h.GetChoices)

	// 录入数据
	router.GET("/input", h.ListInputs)
	router.POST("/input", h.CreateInput)

	// 合并视图
	router.GET("/observations", h.ListObservations)
	router.GET("/chart.png", h.Chart)

	// 数据导出
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}
