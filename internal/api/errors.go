package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pantauharga/internal/importer"
	"pantauharga/internal/store"
	"pantauharga/internal/view"
)

// ErrBadRequest 请求参数无效
var ErrBadRequest = eris.New("bad request")

// StatusCode 错误对应的 HTTP 状态码
func StatusCode(err error) int {
	switch {
	case errors.Is(err, importer.ErrSourceNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrBadRequest), errors.Is(err, store.ErrInvalidObservation):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message 面向用户的错误信息
func Message(err error) string {
	switch {
	case errors.Is(err, view.ErrNoData):
		return NoDataMessage
	default:
		return err.Error()
	}
}

// NoDataMessage 过滤结果为空时的提示
const NoDataMessage = "Tidak ada data untuk filter yang dipilih."

func abortWithError(c *gin.Context, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", code),
			zap.String("error", eris.ToString(err, false)),
		)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": Message(err)})
}
