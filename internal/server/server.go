package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"pantauharga/internal/api"
	"pantauharga/internal/service/dashboard"
	"pantauharga/internal/util"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options 服务器参数
type Options struct {
	DevMode   bool
	ExportDir string
}

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	dash   *dashboard.Dashboard
	api    *api.Handler
	http   *http.Server
}

// NewServer 创建服务器
func NewServer(dash *dashboard.Dashboard, opts Options) (*Server, error) {
	if !opts.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, eris.Wrap(err, "parse templates")
	}

	router := gin.New()
	router.Use(requestLogger(), recovery())
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		router: router,
		dash:   dash,
		api:    api.NewHandler(dash, opts.ExportDir),
	}
	s.http = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.api.RegisterRoutes(s.router.Group("/api"))

	s.router.GET("/", s.Index)
	s.router.POST("/input", s.SubmitInput)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler { return s.router }

// Run 启动服务器，阻塞直到 Shutdown
// Shutdown 先于 Run 调用时 Run 立即返回
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "listen %s", addr)
	}
	return s.Serve(ln)
}

// Serve 在已有的 listener 上提供服务，阻塞直到 Shutdown
func (s *Server) Serve(ln net.Listener) error {
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrapf(err, "serve %s", ln.Addr())
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"rupiah": util.FormatRupiah,
		"number": util.FormatNumber,
		"dict":   dict,
	}
}

// dict 把成对的键值组装为 map，便于向子模板传多个参数
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, eris.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, eris.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
