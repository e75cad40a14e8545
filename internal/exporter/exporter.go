// Package exporter 把过滤后的价格数据导出为 xlsx
package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"pantauharga/internal/model"
	"pantauharga/internal/util"
	"pantauharga/internal/view"
)

const (
	SheetRecap   = "Rekapan"
	SheetSummary = "Ringkasan"

	columnPriceDisplay = "Harga (Rp)"
	dateNumFmt         = "yyyy-mm-dd"
)

var recapHeaders = append(append([]string{}, model.CanonicalColumns...), columnPriceDisplay)

var summaryHeaders = []string{
	model.ColumnCommodity,
	model.ColumnTier,
	model.ColumnProvince,
	"Jumlah Data",
	"Tanggal Awal",
	"Tanggal Akhir",
	"Harga Min",
	"Harga Maks",
	"Harga Rata-rata",
	"Harga Terakhir",
}

// Options 导出选项
type Options struct {
	Filter      view.Filter
	GeneratedAt time.Time
	Progress    func(ProgressEvent)
}

// Export 生成工作簿：Rekapan 为明细（按日期排序），Ringkasan 为按 (商品, 等级, 省份) 的汇总
// 调用方负责 Close 返回的文件
func Export(rows []model.Observation, opts Options) (*excelize.File, error) {
	progress := newProgressTracker(opts.Progress, len(rows))
	progress.stage(StageStart, 0)

	sorted := append([]model.Observation{}, rows...)
	view.SortByDate(sorted)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetRecap); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "rename sheet")
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "create summary sheet")
	}

	styles, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeRecap(f, sorted, styles, progress); err != nil {
		_ = f.Close()
		return nil, err
	}
	progress.stage(StageSummary, 80)

	if err := writeSummary(f, sorted, styles, opts); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	progress.stage(StageDone, 100)
	return f, nil
}

// WriteFile 导出并保存到 path，必要时创建目录
func WriteFile(rows []model.Observation, path string, opts Options) error {
	f, err := Export(rows, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrap(err, "create export directory")
	}
	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "save %s", path)
	}
	return nil
}

// FileName 导出文件名 rekap-<时间戳>.xlsx
func FileName(at time.Time) string {
	return "rekap-" + at.Format("20060102-150405") + ".xlsx"
}

type styles struct {
	header int
	date   int
	price  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, eris.Wrap(err, "header style")
	}

	numFmt := dateNumFmt
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return s, eris.Wrap(err, "date style")
	}

	// #,##0
	s.price, err = f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return s, eris.Wrap(err, "price style")
	}
	return s, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return eris.Wrapf(err, "write %s header", sheet)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return eris.Wrapf(err, "style %s header", sheet)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRecap(f *excelize.File, rows []model.Observation, st styles, progress *progressTracker) error {
	if err := writeHeader(f, SheetRecap, recapHeaders, st.header); err != nil {
		return err
	}

	for i, o := range rows {
		r := i + 2
		values := []interface{}{
			o.Source,
			o.Commodity,
			o.Tier,
			o.Province,
			o.Date.Time(),
			o.Price.InexactFloat64(),
			util.FormatRupiah(o.Price),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(SheetRecap, cell, &values); err != nil {
			return eris.Wrapf(err, "write row %d", r)
		}
		progress.row(i + 1)
	}

	if len(rows) > 0 {
		last := len(rows) + 1
		if err := f.SetCellStyle(SheetRecap, "E2", cellName(5, last), st.date); err != nil {
			return eris.Wrap(err, "style date column")
		}
		if err := f.SetCellStyle(SheetRecap, "F2", cellName(6, last), st.price); err != nil {
			return eris.Wrap(err, "style price column")
		}
	}

	_ = f.SetColWidth(SheetRecap, "A", "A", 12)
	_ = f.SetColWidth(SheetRecap, "B", "B", 28)
	_ = f.SetColWidth(SheetRecap, "C", "D", 20)
	_ = f.SetColWidth(SheetRecap, "E", "F", 14)
	_ = f.SetColWidth(SheetRecap, "G", "G", 18)
	return nil
}

// Group 单个 (商品, 等级, 省份) 的汇总
type Group struct {
	Commodity string
	Tier      string
	Province  string
	Count     int
	First     model.Date
	Last      model.Date
	Min       decimal.Decimal
	Max       decimal.Decimal
	Mean      decimal.Decimal
	Latest    decimal.Decimal
}

// Summarize 按 (商品, 等级, 省份) 汇总，rows 需已按日期排序；分组顺序为首次出现顺序
func Summarize(rows []model.Observation) []Group {
	type key struct{ commodity, tier, province string }

	index := make(map[key]int)
	sums := []decimal.Decimal{}
	var out []Group
	for _, o := range rows {
		k := key{o.Commodity, o.Tier, o.Province}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Group{
				Commodity: o.Commodity,
				Tier:      o.Tier,
				Province:  o.Province,
				First:     o.Date,
				Min:       o.Price,
				Max:       o.Price,
			})
			sums = append(sums, decimal.Zero)
		}
		g := &out[i]
		g.Count++
		g.Last = o.Date
		g.Latest = o.Price
		if o.Price.LessThan(g.Min) {
			g.Min = o.Price
		}
		if o.Price.GreaterThan(g.Max) {
			g.Max = o.Price
		}
		sums[i] = sums[i].Add(o.Price)
	}
	for i := range out {
		out[i].Mean = sums[i].Div(decimal.NewFromInt(int64(out[i].Count))).Round(2)
	}
	return out
}

func writeSummary(f *excelize.File, rows []model.Observation, st styles, opts Options) error {
	if err := writeHeader(f, SheetSummary, summaryHeaders, st.header); err != nil {
		return err
	}

	groups := Summarize(rows)
	for i, g := range groups {
		values := []interface{}{
			g.Commodity,
			g.Tier,
			g.Province,
			g.Count,
			g.First.Time(),
			g.Last.Time(),
			g.Min.InexactFloat64(),
			g.Max.InexactFloat64(),
			g.Mean.InexactFloat64(),
			g.Latest.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetSummary, cellName(1, i+2), &values); err != nil {
			return eris.Wrapf(err, "write summary row %d", i+2)
		}
	}

	if len(groups) > 0 {
		last := len(groups) + 1
		if err := f.SetCellStyle(SheetSummary, "E2", cellName(6, last), st.date); err != nil {
			return eris.Wrap(err, "style summary dates")
		}
		if err := f.SetCellStyle(SheetSummary, "G2", cellName(10, last), st.price); err != nil {
			return eris.Wrap(err, "style summary prices")
		}
	}

	// 汇总表下方记录导出条件
	r := len(groups) + 3
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	notes := [][]interface{}{
		{"Dibuat", generated.Format("2006-01-02 15:04:05")},
		{model.ColumnCommodity, strings.Join(opts.Filter.Commodities, ", ")},
		{model.ColumnTier, strings.Join(opts.Filter.Tiers, ", ")},
		{model.ColumnProvince, strings.Join(opts.Filter.Provinces, ", ")},
		{"Periode", periodLabel(opts.Filter)},
	}
	for i, note := range notes {
		if err := f.SetSheetRow(SheetSummary, cellName(1, r+i), &note); err != nil {
			return eris.Wrap(err, "write export notes")
		}
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "B", "C", 20)
	_ = f.SetColWidth(SheetSummary, "D", "J", 14)
	return nil
}

func periodLabel(filter view.Filter) string {
	start, end := "", ""
	if filter.Start != nil {
		start = filter.Start.String()
	}
	if filter.End != nil {
		end = filter.End.String()
	}
	if start == "" && end == "" {
		return "semua"
	}
	return start + " s.d. " + end
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
