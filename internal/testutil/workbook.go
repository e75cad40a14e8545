// Package testutil 测试用的 Excel 数据源构造工具
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// BuildWorkbook 按 sheet 名写入行数据（第一行为表头），保存到临时目录并返回路径
func BuildWorkbook(t testing.TB, sheets map[string][][]interface{}) string {
	t.Helper()

	wb := excelize.NewFile()
	defaultSheet := wb.GetSheetName(wb.GetActiveSheetIndex())

	for name, rows := range sheets {
		_, err := wb.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, wb.SetSheetRow(name, cell, &r))
		}
	}
	if _, ok := sheets[defaultSheet]; !ok {
		require.NoError(t, wb.DeleteSheet(defaultSheet))
	}

	path := filepath.Join(t.TempDir(), "harga.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())
	return path
}

// ChoiceSheet 参考数据：含重复值与空单元格
func ChoiceSheet() [][]interface{} {
	return [][]interface{}{
		{"komoditi", "tingkatan", "Provinsi"},
		{"Beras", "Eceran", "DKI Jakarta"},
		{"Gula", "Grosir", "Jawa Barat"},
		{"Beras", nil, "Aceh"},
		{"Cabai", "Eceran", nil},
		{nil, nil, "DKI Jakarta"},
	}
}

// DailySheet 生成 3 个实体行、days 个日期列（日期表头为真实日期单元格）
// blanks 中的 {实体, 日期} 位置留空；价格为 10000 + 实体*1000 + 日期序号
func DailySheet(first time.Time, days int, blanks map[[2]int]bool) [][]interface{} {
	header := []interface{}{"", "Komoditi", "Tingkat", "Prov/Kab/Kota", "Satuan"}
	for d := 0; d < days; d++ {
		header = append(header, first.AddDate(0, 0, d))
	}
	entities := [][]interface{}{
		{"SP2KP", "Beras", "Eceran", "DKI Jakarta", "kg"},
		{"SP2KP", "Gula", "Grosir", "Jawa Barat", "kg"},
		{"PIHPS", "Cabai", "Eceran", "Aceh", "kg"},
	}
	rows := [][]interface{}{header}
	for e, ent := range entities {
		row := append([]interface{}{}, ent...)
		for d := 0; d < days; d++ {
			if blanks[[2]int{e, d}] {
				row = append(row, nil)
				continue
			}
			row = append(row, 10000+e*1000+d)
		}
		rows = append(rows, row)
	}
	return rows
}

// StandardWorkbook choice + jan26（2 天）+ feb26（1 天），共 9 条历史观测
func StandardWorkbook(t testing.TB) string {
	t.Helper()
	return BuildWorkbook(t, map[string][][]interface{}{
		"choice": ChoiceSheet(),
		"jan26":  DailySheet(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), 2, nil),
		"feb26":  DailySheet(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), 1, nil),
	})
}
