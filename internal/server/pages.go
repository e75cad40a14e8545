package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pantauharga/internal/api"
	"pantauharga/internal/importer"
	"pantauharga/internal/model"
	"pantauharga/internal/service/dashboard"
	"pantauharga/internal/view"
)

// 页签
const (
	TabInput = "input"
	TabTable = "tabel"
	TabChart = "tren"
)

// DefaultSource 录入表单的默认数据来源
const DefaultSource = "SP2KP"

type tab struct {
	ID    string
	Label string
}

var tabs = []tab{
	{TabInput, "Input Data"},
	{TabTable, "Rekapan Tabular"},
	{TabChart, "Tren Harga Harian"},
}

// selection 多选框的选中状态
type selection struct {
	Commodities map[string]bool
	Tiers       map[string]bool
	Provinces   map[string]bool
}

func newSelection(f view.Filter) selection {
	set := func(values []string) map[string]bool {
		m := make(map[string]bool, len(values))
		for _, v := range values {
			m[v] = true
		}
		return m
	}
	return selection{set(f.Commodities), set(f.Tiers), set(f.Provinces)}
}

type inputForm struct {
	Source    string
	Commodity string
	Tier      string
	Province  string
	Date      string
	Price     string
}

type pageData struct {
	Tabs        []tab
	Tab         string
	SourcePath  string
	SourceError string
	Error       string
	Ref         model.ReferenceSet

	// Input Data
	Form    inputForm
	Saved   bool
	FormErr string
	Inputs  []model.Observation

	// Rekapan Tabular / Tren Harga Harian
	Selected  selection
	Rows      []model.Observation
	Start     string
	End       string
	MinDate   string
	MaxDate   string
	ChartURL  string
	NoData    bool
	NoDataMsg string
}

// Index 主页面
// GET /?tab=input|tabel|tren
func (s *Server) Index(c *gin.Context) {
	data := s.basePage(c.DefaultQuery("tab", TabInput))
	if data.SourceError != "" {
		c.HTML(http.StatusServiceUnavailable, "index.html", data)
		return
	}

	var err error
	switch data.Tab {
	case TabTable:
		err = s.fillTable(c.Request.URL.Query(), &data)
	case TabChart:
		err = s.fillChart(c.Request.URL.Query(), &data)
	default:
		data.Saved = c.Query("saved") == "1"
		data.Form = s.defaultForm(data.Ref)
		err = s.fillInputs(&data)
	}
	if err != nil {
		s.renderError(c, data, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// SubmitInput 录入表单提交，成功后重定向回 Input Data 页签
// POST /input
func (s *Server) SubmitInput(c *gin.Context) {
	data := s.basePage(TabInput)
	if data.SourceError != "" {
		c.HTML(http.StatusServiceUnavailable, "index.html", data)
		return
	}

	form := inputForm{
		Source:    strings.TrimSpace(c.PostForm("sumber")),
		Commodity: c.PostForm("komoditi"),
		Tier:      c.PostForm("tingkat"),
		Province:  c.PostForm("provinsi"),
		Date:      c.PostForm("tanggal"),
		Price:     c.PostForm("harga"),
	}

	o, err := form.observation()
	if err == nil {
		err = s.dash.AddInput(o)
	}
	if err != nil {
		zap.L().Warn("input rejected", zap.Error(err))
		data.Form = form
		data.FormErr = err.Error()
		if ferr := s.fillInputs(&data); ferr != nil {
			s.renderError(c, data, ferr)
			return
		}
		c.HTML(api.StatusCode(err), "index.html", data)
		return
	}

	c.Redirect(http.StatusSeeOther, "/?"+url.Values{"tab": {TabInput}, "saved": {"1"}}.Encode())
}

func (f inputForm) observation() (model.Observation, error) {
	o := model.Observation{
		Source:    f.Source,
		Commodity: f.Commodity,
		Tier:      f.Tier,
		Province:  f.Province,
	}
	date, err := model.ParseDate(f.Date)
	if err != nil {
		return o, eris.Wrapf(api.ErrBadRequest, "%s: %v", model.ColumnDate, err)
	}
	o.Date = date
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return o, eris.Wrapf(api.ErrBadRequest, "%s: %q", model.ColumnPrice, f.Price)
	}
	o.Price = price
	return o, nil
}

// basePage 检查数据源并加载参考数据；数据源缺失时只填充 SourceError
func (s *Server) basePage(tabID string) pageData {
	data := pageData{
		Tabs:       tabs,
		Tab:        TabInput,
		SourcePath: s.dash.Source().Path(),
		NoDataMsg:  api.NoDataMessage,
	}
	for _, t := range tabs {
		if t.ID == tabID {
			data.Tab = tabID
		}
	}

	if err := s.dash.CheckSource(); err != nil {
		data.SourceError = "File data tidak ditemukan: " + data.SourcePath
		return data
	}
	ref, err := s.dash.ReferenceSet()
	if err != nil {
		data.Error = err.Error()
		return data
	}
	data.Ref = ref
	return data
}

func (s *Server) defaultForm(ref model.ReferenceSet) inputForm {
	first := func(values []string) string {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	return inputForm{
		Source:    DefaultSource,
		Commodity: first(ref.Commodities),
		Tier:      first(ref.Tiers),
		Province:  first(ref.Provinces),
		Date:      model.Today().String(),
		Price:     "0",
	}
}

func (s *Server) fillInputs(data *pageData) error {
	if data.Error != "" {
		return eris.New(data.Error)
	}
	inputs, err := s.dash.Inputs()
	if err != nil {
		return err
	}
	data.Inputs = inputs
	return nil
}

func (s *Server) fillTable(q url.Values, data *pageData) error {
	if data.Error != "" {
		return eris.New(data.Error)
	}
	f, err := api.ParseFilter(q, view.DefaultFilter(data.Ref, dashboard.TableDefaultCommodities))
	if err != nil {
		return err
	}
	rows, err := s.dash.Query(f)
	if err != nil {
		return err
	}
	data.Selected = newSelection(f)
	data.Rows = rows
	data.NoData = len(rows) == 0
	return nil
}

func (s *Server) fillChart(q url.Values, data *pageData) error {
	if data.Error != "" {
		return eris.New(data.Error)
	}
	first, last, err := s.dash.DateBounds()
	if err != nil {
		return err
	}
	defaults := view.DefaultFilter(data.Ref, dashboard.ChartDefaultCommodities)
	defaults.Start, defaults.End = &first, &last

	f, err := api.ParseFilter(q, defaults)
	if err != nil {
		return err
	}
	rows, err := s.dash.Query(f)
	if err != nil {
		return err
	}

	data.Selected = newSelection(f)
	data.MinDate, data.MaxDate = first.String(), last.String()
	data.Start, data.End = f.Start.String(), f.End.String()
	data.NoData = len(rows) == 0
	if !data.NoData {
		data.ChartURL = "/api/chart.png?" + api.FilterQuery(f).Encode()
	}
	return nil
}

func (s *Server) renderError(c *gin.Context, data pageData, err error) {
	code := api.StatusCode(err)
	if errors.Is(err, importer.ErrSourceNotFound) {
		data.SourceError = "File data tidak ditemukan: " + data.SourcePath
	} else {
		data.Error = err.Error()
	}
	zap.L().Error("render page failed", zap.String("tab", data.Tab), zap.Error(err))
	c.HTML(code, "index.html", data)
}
