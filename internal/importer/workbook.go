package importer

import (
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pantauharga/internal/model"
	"pantauharga/internal/parser"
	"pantauharga/internal/table"
)

// 月度 Sheet 必需的元数据列（统一口径名）
var requiredMetadata = []string{model.ColumnCommodity, model.ColumnTier, model.ColumnProvince}

func hasSheet(wb *excelize.File, sheet string) bool {
	return slices.Contains(wb.GetSheetList(), sheet)
}

// LoadReferenceSet 从 choice Sheet 读取可选的商品、等级、省份
// 三列互相独立，各自去空、去重并保留首次出现顺序
func LoadReferenceSet(wb *excelize.File, sheet string) (model.ReferenceSet, error) {
	if !hasSheet(wb, sheet) {
		return model.ReferenceSet{}, eris.Wrapf(ErrDataNotFound, "sheet %q", sheet)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return model.ReferenceSet{}, eris.Wrapf(err, "read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return model.ReferenceSet{}, eris.Wrapf(ErrDataNotFound, "sheet %q is empty", sheet)
	}

	column := func(name string) ([]string, error) {
		idx := -1
		for i, h := range rows[0] {
			if parser.NormalizeColumnName(h) == parser.NormalizeColumnName(name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, eris.Wrapf(ErrDataNotFound, "column %q in sheet %q", name, sheet)
		}
		values := make([]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if idx < len(row) {
				values = append(values, row[idx])
			}
		}
		return parser.UniqueNonEmpty(values), nil
	}

	var ref model.ReferenceSet
	if ref.Commodities, err = column(parser.ChoiceCommodity); err != nil {
		return model.ReferenceSet{}, err
	}
	if ref.Tiers, err = column(parser.ChoiceTier); err != nil {
		return model.ReferenceSet{}, err
	}
	if ref.Provinces, err = column(parser.ChoiceProvince); err != nil {
		return model.ReferenceSet{}, err
	}
	return ref, nil
}

// LoadHistorical 读取全部月度 Sheet，宽表转长表后合并为价格观测
// 任一 Sheet 缺失即失败；没有日期列的 Sheet 贡献 0 行
func LoadHistorical(wb *excelize.File, sheets []string, aliases parser.ColumnAliases) ([]model.Observation, *LoadReport, error) {
	start := time.Now()
	report := &LoadReport{Sheets: []SheetReport{}}
	out := make([]model.Observation, 0)

	for _, sheet := range sheets {
		obs, sr, err := loadDailySheet(wb, sheet, aliases)
		if err != nil {
			return nil, nil, err
		}
		report.add(sr)
		out = append(out, obs...)

		zap.L().Debug("daily sheet loaded",
			zap.String("sheet", sheet),
			zap.Int("entity_rows", sr.EntityRows),
			zap.Int("date_columns", sr.DateColumns),
			zap.Int("imported_rows", sr.ImportedRows),
			zap.Int("dropped_price", sr.DroppedPrice),
			zap.Int("dropped_metadata", sr.DroppedMetadata),
		)
	}

	report.Duration = time.Since(start)
	return out, report, nil
}

// loadDailySheet 处理单个月度 Sheet
func loadDailySheet(wb *excelize.File, sheet string, aliases parser.ColumnAliases) ([]model.Observation, SheetReport, error) {
	sheetStart := time.Now()
	sr := SheetReport{SheetName: sheet}

	if !hasSheet(wb, sheet) {
		return nil, sr, eris.Wrapf(ErrDataNotFound, "sheet %q", sheet)
	}

	// 元数据取渲染值，日期表头和价格取原始值（避免千分位等格式干扰）
	formatted, err := wb.GetRows(sheet)
	if err != nil {
		return nil, sr, eris.Wrapf(err, "read sheet %q", sheet)
	}
	raw, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, sr, eris.Wrapf(err, "read raw sheet %q", sheet)
	}
	if len(formatted) == 0 {
		sr.Duration = time.Since(sheetStart)
		return nil, sr, nil
	}

	header := parser.HeaderRow{Formatted: formatted[0]}
	if len(raw) > 0 {
		header.Raw = raw[0]
	}
	if header.DateStyled, err = headerDateStyles(wb, sheet, max(len(header.Raw), len(header.Formatted))); err != nil {
		return nil, sr, err
	}
	layout := parser.ClassifyHeader(header, aliases)
	for _, c := range layout.Ignored {
		sr.IgnoredColumns = append(sr.IgnoredColumns, c.Raw)
	}

	sr.EntityRows = len(formatted) - 1
	sr.DateColumns = len(layout.Dates)
	if len(layout.Dates) == 0 {
		sr.Duration = time.Since(sheetStart)
		return nil, sr, nil
	}
	if missing := layout.MissingMetadata(requiredMetadata); len(missing) > 0 {
		return nil, sr, eris.Wrapf(ErrDataNotFound, "columns %s in sheet %q", strings.Join(missing, ", "), sheet)
	}

	wide := wideTable(layout, formatted[1:], raw)
	long, err := table.Melt(wide, table.MeltSpec{
		IDColumns:    wide.Header[:len(layout.Metadata)],
		ValueColumns: wide.Header[len(layout.Metadata):],
		VarName:      model.ColumnDate,
		ValueName:    model.ColumnPrice,
	})
	if err != nil {
		return nil, sr, eris.Wrapf(err, "reshape sheet %q", sheet)
	}
	sr.RawRows = long.Len()

	obs := make([]model.Observation, 0, long.Len())
	for i := range long.Rows {
		price, ok := parser.ParsePrice(long.Value(i, model.ColumnPrice))
		if !ok {
			sr.DroppedPrice++
			continue
		}
		o := model.Observation{
			Source:    strings.TrimSpace(long.Value(i, model.ColumnSource)),
			Commodity: strings.TrimSpace(long.Value(i, model.ColumnCommodity)),
			Tier:      strings.TrimSpace(long.Value(i, model.ColumnTier)),
			Province:  strings.TrimSpace(long.Value(i, model.ColumnProvince)),
			Price:     price,
		}
		if o.Commodity == "" || o.Tier == "" || o.Province == "" {
			sr.DroppedMetadata++
			continue
		}
		if o.Date, err = model.ParseDate(long.Value(i, model.ColumnDate)); err != nil {
			return nil, sr, eris.Wrapf(err, "sheet %q", sheet)
		}
		obs = append(obs, o)
	}

	sr.ImportedRows = len(obs)
	sr.Duration = time.Since(sheetStart)
	return obs, sr, nil
}

// headerDateStyles 逐列检查表头单元格是否使用日期数字格式
func headerDateStyles(wb *excelize.File, sheet string, n int) ([]bool, error) {
	styled := make([]bool, n)
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, eris.Wrapf(err, "header cell %d", i+1)
		}
		styleID, err := wb.GetCellStyle(sheet, cell)
		if err != nil {
			return nil, eris.Wrapf(err, "style of %s!%s", sheet, cell)
		}
		if styleID == 0 {
			continue
		}
		style, err := wb.GetStyle(styleID)
		if err != nil {
			return nil, eris.Wrapf(err, "style %d of %s!%s", styleID, sheet, cell)
		}
		custom := ""
		if style.CustomNumFmt != nil {
			custom = *style.CustomNumFmt
		}
		styled[i] = parser.IsDateNumFmt(style.NumFmt, custom)
	}
	return styled, nil
}

// wideTable 按表头识别结果抽取宽表：元数据列在前（统一口径名），日期列在后（ISO 日期）
func wideTable(layout parser.HeaderLayout, formattedRows, rawRows [][]string) *table.Table {
	header := make([]string, 0, len(layout.Metadata)+len(layout.Dates))
	for _, c := range layout.Metadata {
		header = append(header, c.Canonical)
	}
	for _, c := range layout.Dates {
		header = append(header, c.Canonical)
	}

	t := &table.Table{Header: header, Rows: make([][]string, 0, len(formattedRows))}
	for i, row := range formattedRows {
		var rawRow []string
		// rawRows 含表头，与 formattedRows 错开一行
		if i+1 < len(rawRows) {
			rawRow = rawRows[i+1]
		}
		r := make([]string, 0, len(header))
		for _, c := range layout.Metadata {
			r = append(r, at(row, c.Index))
		}
		for _, c := range layout.Dates {
			r = append(r, at(rawRow, c.Index))
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
