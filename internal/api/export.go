package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pantauharga/internal/exporter"
	"pantauharga/internal/service/dashboard"
)

// ExportResponse 导出结果
type ExportResponse struct {
	Rows        int    `json:"rows"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"` // 秒
}

// Export 导出过滤结果为 xlsx，返回一次性下载地址
// POST /api/export  body: view.Filter（为空时使用表格默认选择）
func (h *Handler) Export(c *gin.Context) {
	f, err := h.dash.DefaultFilter(dashboard.TableDefaultCommodities)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&f); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, eris.Wrapf(ErrBadRequest, "invalid body: %v", err))
		return
	}

	rows, err := h.dash.Query(f)
	if err != nil {
		abortWithError(c, err)
		return
	}

	now := time.Now()
	name := exporter.FileName(now)
	path := filepath.Join(h.exportDir, name)
	err = exporter.WriteFile(rows, path, exporter.Options{
		Filter:      f,
		GeneratedAt: now,
		Progress: func(p exporter.ProgressEvent) {
			zap.L().Debug("export progress",
				zap.Int("percent", p.Percent),
				zap.String("stage", p.Stage),
				zap.Int("rows", p.Rows),
			)
		},
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	token := h.downloads.put(path, name, exportDownloadTTL)
	zap.L().Info("export written", zap.String("file", path), zap.Int("rows", len(rows)))

	c.JSON(http.StatusOK, ExportResponse{
		Rows:        len(rows),
		FileName:    name,
		DownloadURL: "/api/export/download/" + token,
		ExpiresIn:   int(exportDownloadTTL.Seconds()),
	})
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tautan unduhan sudah kedaluwarsa."})
		return
	}
	if _, err := os.Stat(item.filePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Berkas ekspor tidak ditemukan."})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", item.fileName, url.PathEscape(item.fileName)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)
}
