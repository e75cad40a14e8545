package importer

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pantauharga/internal/model"
	"pantauharga/internal/parser"
)

// SourceOptions 数据源配置
type SourceOptions struct {
	Path        string               // Excel 文件路径
	ChoiceSheet string               // 参考数据 Sheet
	DailySheets []string             // 月度价格 Sheet，按顺序合并
	Aliases     parser.ColumnAliases // 额外的表头别名，与默认别名合并
}

// Source 数据源 Excel 的进程级缓存
// 参考数据与历史数据首次访问时加载，之后一直复用，直到 Invalidate
// 缓存假定 Excel 文件在进程生命周期内不变
type Source struct {
	opts    SourceOptions
	aliases parser.ColumnAliases

	mu         sync.Mutex
	reference  *model.ReferenceSet
	historical []model.Observation
	report     *LoadReport
	loadedAt   time.Time
}

// NewSource 创建数据源
func NewSource(opts SourceOptions) *Source {
	aliases := parser.DefaultAliases()
	for k, v := range opts.Aliases {
		aliases[k] = v
	}
	return &Source{opts: opts, aliases: aliases}
}

// Path 数据源文件路径
func (s *Source) Path() string { return s.opts.Path }

// Filename 数据源文件名
func (s *Source) Filename() string { return filepath.Base(s.opts.Path) }

// Exists 检查数据源文件是否存在（每次调用都会访问文件系统，不缓存）
func (s *Source) Exists() error {
	info, err := os.Stat(s.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return eris.Wrapf(ErrSourceNotFound, "%s", s.opts.Path)
		}
		return eris.Wrapf(err, "stat %s", s.opts.Path)
	}
	if info.IsDir() {
		return eris.Wrapf(ErrSourceNotFound, "%s is a directory", s.opts.Path)
	}
	return nil
}

// ReferenceSet 返回参考数据（带缓存）
func (s *Source) ReferenceSet() (model.ReferenceSet, error) {
	if err := s.Exists(); err != nil {
		return model.ReferenceSet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reference != nil {
		return *s.reference, nil
	}

	wb, err := s.open()
	if err != nil {
		return model.ReferenceSet{}, err
	}
	defer wb.Close()

	ref, err := LoadReferenceSet(wb, s.opts.ChoiceSheet)
	if err != nil {
		return model.ReferenceSet{}, err
	}
	s.reference = &ref

	zap.L().Info("reference set loaded",
		zap.String("file", s.Filename()),
		zap.Int("commodities", len(ref.Commodities)),
		zap.Int("tiers", len(ref.Tiers)),
		zap.Int("provinces", len(ref.Provinces)),
	)
	return ref, nil
}

// Historical 返回历史价格观测（带缓存）
// 返回的切片由缓存持有，调用方不得修改
func (s *Source) Historical() ([]model.Observation, error) {
	if err := s.Exists(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.historical != nil {
		return s.historical, nil
	}

	wb, err := s.open()
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	obs, report, err := LoadHistorical(wb, s.opts.DailySheets, s.aliases)
	if err != nil {
		return nil, err
	}
	report.Filename = s.Filename()

	s.historical = obs
	s.report = report
	s.loadedAt = time.Now()

	zap.L().Info("historical prices loaded",
		zap.String("file", report.Filename),
		zap.Strings("sheets", s.opts.DailySheets),
		zap.Int("raw_rows", report.RawRows),
		zap.Int("imported_rows", report.ImportedRows),
		zap.Int("dropped_rows", report.DroppedRows),
		zap.Duration("duration", report.Duration),
	)
	return obs, nil
}

// Report 最近一次历史数据加载报告，尚未加载时返回 nil
func (s *Source) Report() (*LoadReport, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report, s.loadedAt
}

// Invalidate 清空缓存，下次访问时重新读取 Excel
func (s *Source) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reference = nil
	s.historical = nil
	s.report = nil
	s.loadedAt = time.Time{}

	zap.L().Info("source cache cleared", zap.String("file", s.Filename()))
}

func (s *Source) open() (*excelize.File, error) {
	wb, err := excelize.OpenFile(s.opts.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "open workbook %s", s.opts.Path)
	}
	return wb, nil
}
