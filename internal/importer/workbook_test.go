package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pantauharga/internal/model"
	"pantauharga/internal/parser"
	"pantauharga/internal/testutil"
)

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestLoadReferenceSet_DedupAndDropMissing(t *testing.T) {
	t.Parallel()

	path := testutil.BuildWorkbook(t, map[string][][]interface{}{"choice": testutil.ChoiceSheet()})
	ref, err := LoadReferenceSet(openWorkbook(t, path), "choice")
	require.NoError(t, err)

	assert.Equal(t, []string{"Beras", "Gula", "Cabai"}, ref.Commodities)
	assert.Equal(t, []string{"Eceran", "Grosir"}, ref.Tiers)
	assert.Equal(t, []string{"DKI Jakarta", "Jawa Barat", "Aceh"}, ref.Provinces)
}

func TestLoadReferenceSet_MissingSheetOrColumn(t *testing.T) {
	t.Parallel()

	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"choice": {{"komoditi", "Provinsi"}, {"Beras", "Aceh"}},
	})
	wb := openWorkbook(t, path)

	_, err := LoadReferenceSet(wb, "choice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataNotFound))

	_, err = LoadReferenceSet(wb, "pilihan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataNotFound))
}

func TestLoadHistorical_TwoSheetsScenario(t *testing.T) {
	t.Parallel()

	blanks := map[[2]int]bool{{0, 0}: true, {1, 5}: true, {2, 10}: true, {2, 27}: true}
	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"jan26": testutil.DailySheet(jan, 28, blanks),
		"feb26": testutil.DailySheet(jan.AddDate(0, 1, 0), 0, nil),
	})

	obs, report, err := LoadHistorical(openWorkbook(t, path), []string{"jan26", "feb26"}, parser.DefaultAliases())
	require.NoError(t, err)

	require.Len(t, report.Sheets, 2)
	assert.Equal(t, 84, report.Sheets[0].RawRows)
	assert.Equal(t, 28, report.Sheets[0].DateColumns)
	assert.Equal(t, 4, report.Sheets[0].DroppedPrice)
	assert.Equal(t, 0, report.Sheets[1].RawRows)
	assert.Equal(t, 3, report.Sheets[1].EntityRows)
	assert.Equal(t, 84, report.RawRows)
	assert.Equal(t, 80, report.ImportedRows)
	require.Len(t, obs, 80)

	// 按日期列展开：第一列日期的第 1 个实体价格为空，首行来自第 2 个实体
	first := obs[0]
	assert.Equal(t, "SP2KP", first.Source)
	assert.Equal(t, "Gula", first.Commodity)
	assert.Equal(t, "Grosir", first.Tier)
	assert.Equal(t, "Jawa Barat", first.Province)
	assert.Equal(t, model.MustParseDate("2026-01-01"), first.Date)
	assert.Equal(t, "11000", first.Price.String())

	last := obs[len(obs)-1]
	assert.Equal(t, model.MustParseDate("2026-01-28"), last.Date)
	assert.Equal(t, "Gula", last.Commodity)
}

func TestLoadHistorical_DayOnlyDateHeaders(t *testing.T) {
	t.Parallel()

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"jan26": testutil.DailySheet(jan, 28, nil),
	})

	// 日期表头只显示日（"1" ~ "28"），渲染结果是纯数字
	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	dayOnly := "d"
	style, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &dayOnly})
	require.NoError(t, err)
	last, err := excelize.CoordinatesToCellName(5+28, 1)
	require.NoError(t, err)
	require.NoError(t, wb.SetCellStyle("jan26", "F1", last, style))
	rendered, err := wb.GetCellValue("jan26", "F1")
	require.NoError(t, err)
	require.Equal(t, "1", rendered)
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	obs, report, err := LoadHistorical(openWorkbook(t, path), []string{"jan26"}, parser.DefaultAliases())
	require.NoError(t, err)

	require.Len(t, report.Sheets, 1)
	assert.Equal(t, 28, report.Sheets[0].DateColumns)
	assert.Equal(t, []string{"Satuan"}, report.Sheets[0].IgnoredColumns)
	require.Len(t, obs, 84)
	assert.Equal(t, model.MustParseDate("2026-01-01"), obs[0].Date)
	assert.Equal(t, model.MustParseDate("2026-01-28"), obs[len(obs)-1].Date)
}

func TestLoadHistorical_TextDateHeadersAndNonNumericPrices(t *testing.T) {
	t.Parallel()

	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"jan26": {
			{"", "Komoditi", "Tingkat", "Prov/Kab/Kota", "2026-01-01", "2026-01-02", "Rata-rata"},
			{"SP2KP", "Beras", "Eceran", "DKI Jakarta", 15000, "-", 15000},
			{"SP2KP", "Gula", "Eceran", "DKI Jakarta", "n/a", 17000.5, 17000},
			{nil, nil, nil, nil, 100, 200, nil},
		},
	})

	obs, report, err := LoadHistorical(openWorkbook(t, path), []string{"jan26"}, parser.DefaultAliases())
	require.NoError(t, err)

	assert.Equal(t, 6, report.RawRows)
	assert.Equal(t, 2, report.Sheets[0].DroppedPrice)
	assert.Equal(t, 2, report.Sheets[0].DroppedMetadata)
	assert.Equal(t, []string{"Rata-rata"}, report.Sheets[0].IgnoredColumns)
	require.Len(t, obs, 2)
	assert.Equal(t, "Beras", obs[0].Commodity)
	assert.Equal(t, "2026-01-01", obs[0].Date.String())
	assert.Equal(t, "17000.5", obs[1].Price.String())
	assert.Equal(t, "2026-01-02", obs[1].Date.String())
}

func TestLoadHistorical_MissingSheetFails(t *testing.T) {
	t.Parallel()

	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"jan26": testutil.DailySheet(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 2, nil),
	})

	_, _, err := LoadHistorical(openWorkbook(t, path), []string{"jan26", "feb26"}, parser.DefaultAliases())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataNotFound))
}

func TestLoadHistorical_MissingMetadataColumnFails(t *testing.T) {
	t.Parallel()

	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"jan26": {
			{"Komoditi", "Prov/Kab/Kota", "2026-01-01"},
			{"Beras", "Aceh", 100},
		},
	})

	_, _, err := LoadHistorical(openWorkbook(t, path), []string{"jan26"}, parser.DefaultAliases())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataNotFound))
	assert.Contains(t, err.Error(), model.ColumnTier)
}
