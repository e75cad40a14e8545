// Package dashboard 组合数据源缓存、录入存储与过滤引擎，供页面、接口和命令行共用
package dashboard

import (
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pantauharga/internal/importer"
	"pantauharga/internal/model"
	"pantauharga/internal/store"
	"pantauharga/internal/view"
)

// 默认选择的商品数量
const (
	TableDefaultCommodities = 1
	ChartDefaultCommodities = 2
)

// Dashboard 每次请求重新计算合并视图；历史数据来自进程级缓存，录入数据每次重新读取
type Dashboard struct {
	source *importer.Source
	store  store.Store
}

// New 创建 Dashboard
func New(source *importer.Source, st store.Store) *Dashboard {
	return &Dashboard{source: source, store: st}
}

// Source 数据源
func (d *Dashboard) Source() *importer.Source { return d.source }

// CheckSource 数据源文件不存在时返回 importer.ErrSourceNotFound
func (d *Dashboard) CheckSource() error { return d.source.Exists() }

// ReferenceSet 参考数据
func (d *Dashboard) ReferenceSet() (model.ReferenceSet, error) {
	return d.source.ReferenceSet()
}

// Inputs 全部录入数据（写入顺序）
func (d *Dashboard) Inputs() ([]model.Observation, error) {
	return d.store.Read()
}

// AddInput 追加一条录入数据
// 商品、等级、省份必须取自参考数据，否则返回 store.ErrInvalidObservation
func (d *Dashboard) AddInput(o model.Observation) error {
	o = store.Normalize(o)
	if err := store.Validate(o); err != nil {
		return err
	}
	ref, err := d.source.ReferenceSet()
	if err != nil {
		return err
	}
	for _, c := range []struct {
		column  string
		value   string
		choices []string
	}{
		{model.ColumnCommodity, o.Commodity, ref.Commodities},
		{model.ColumnTier, o.Tier, ref.Tiers},
		{model.ColumnProvince, o.Province, ref.Provinces},
	} {
		if !slices.Contains(c.choices, c.value) {
			return eris.Wrapf(store.ErrInvalidObservation, "%s %q is not a known choice", c.column, c.value)
		}
	}
	return d.store.Append(o)
}

// Combined 历史数据 ++ 录入数据
func (d *Dashboard) Combined() ([]model.Observation, error) {
	historical, err := d.source.Historical()
	if err != nil {
		return nil, err
	}
	user, err := d.store.Read()
	if err != nil {
		return nil, err
	}
	return view.Combine(historical, user), nil
}

// Query 过滤并按日期排序
func (d *Dashboard) Query(f view.Filter) ([]model.Observation, error) {
	combined, err := d.Combined()
	if err != nil {
		return nil, err
	}
	rows := view.Query(combined, f)
	zap.L().Debug("query",
		zap.Strings("komoditi", f.Commodities),
		zap.Strings("tingkat", f.Tiers),
		zap.Strings("provinsi", f.Provinces),
		zap.Int("combined", len(combined)),
		zap.Int("matched", len(rows)),
	)
	return rows, nil
}

// DefaultFilter 参考数据对应的默认过滤条件
func (d *Dashboard) DefaultFilter(commodities int) (view.Filter, error) {
	ref, err := d.ReferenceSet()
	if err != nil {
		return view.Filter{}, err
	}
	return view.DefaultFilter(ref, commodities), nil
}

// FillDefaults 为空的分类维度填入默认选择（命令行使用，页面上的空选择不做填充）
func (d *Dashboard) FillDefaults(f view.Filter, commodities int) (view.Filter, error) {
	defaults, err := d.DefaultFilter(commodities)
	if err != nil {
		return view.Filter{}, err
	}
	if len(f.Commodities) == 0 {
		f.Commodities = defaults.Commodities
	}
	if len(f.Tiers) == 0 {
		f.Tiers = defaults.Tiers
	}
	if len(f.Provinces) == 0 {
		f.Provinces = defaults.Provinces
	}
	return f, nil
}

// DateBounds 合并视图的最早与最晚日期
func (d *Dashboard) DateBounds() (first, last model.Date, err error) {
	combined, err := d.Combined()
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	first, last = view.DateBounds(combined)
	return first, last, nil
}

// ClearCache 清空数据源缓存
func (d *Dashboard) ClearCache() { d.source.Invalidate() }

// Status 运行状态
type Status struct {
	SourcePath     string               `json:"sourcePath"`
	SourceFound    bool                 `json:"sourceFound"`
	SourceError    string               `json:"sourceError,omitempty"`
	InputRows      int                  `json:"inputRows"`
	HistoricalRows int                  `json:"historicalRows"`
	LoadedAt       string               `json:"loadedAt,omitempty"`
	Report         *importer.LoadReport `json:"report,omitempty"`
}

// Status 汇总运行状态；不会触发历史数据加载
func (d *Dashboard) Status() (Status, error) {
	st := Status{SourcePath: d.source.Path(), SourceFound: true}
	if err := d.source.Exists(); err != nil {
		st.SourceFound = false
		st.SourceError = err.Error()
	}

	inputs, err := d.store.Read()
	if err != nil {
		return st, err
	}
	st.InputRows = len(inputs)

	if report, loadedAt := d.source.Report(); report != nil {
		st.Report = report
		st.HistoricalRows = report.ImportedRows
		st.LoadedAt = loadedAt.Format(time.RFC3339)
	}
	return st, nil
}
