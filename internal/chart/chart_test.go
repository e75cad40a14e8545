package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pantauharga/internal/model"
	"pantauharga/internal/view"
)

func row(commodity, province, date string, price int64) model.Observation {
	return model.Observation{
		Source:    "SP2KP",
		Commodity: commodity,
		Tier:      "Eceran",
		Province:  province,
		Date:      model.MustParseDate(date),
		Price:     decimal.NewFromInt(price),
	}
}

func TestGroup_OneSeriesPerCommodityProvince(t *testing.T) {
	t.Parallel()

	rows := []model.Observation{
		row("Beras", "Aceh", "2026-01-01", 100),
		row("Gula", "Aceh", "2026-01-01", 200),
		row("Beras", "Bali", "2026-01-01", 110),
		row("Beras", "Aceh", "2026-01-02", 105),
	}

	series := Group(rows)
	require.Len(t, series, 3)
	assert.Equal(t, "Beras", series[0].Commodity)
	assert.Equal(t, "Aceh", series[0].Province)
	require.Len(t, series[0].Points, 2)
	assert.Equal(t, 100.0, series[0].Points[0].Y)
	assert.Equal(t, 105.0, series[0].Points[1].Y)
	assert.Less(t, series[0].Points[0].X, series[0].Points[1].X)
	assert.Equal(t, "Gula", series[1].Commodity)
	assert.Equal(t, "Bali", series[2].Province)
}

func TestRender_WritesPNG(t *testing.T) {
	t.Parallel()

	rows := []model.Observation{
		row("Beras", "Aceh", "2026-01-01", 15000),
		row("Beras", "Aceh", "2026-01-02", 15100),
		row("Gula", "Aceh", "2026-01-01", 17500),
		row("Gula", "Aceh", "2026-01-02", 17400),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rows, DefaultOptions()))
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), buf.Bytes()[:8])
}

func TestRender_SinglePoint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []model.Observation{row("Beras", "Aceh", "2026-01-01", 15000)}, Options{}))
	assert.NotZero(t, buf.Len())
}

func TestRender_EmptyIsNoData(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Render(&buf, nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, view.ErrNoData))
	assert.Zero(t, buf.Len())
}

func TestPriceTicks_IndonesianGrouping(t *testing.T) {
	t.Parallel()

	ticks := priceTicks{printer: message.NewPrinter(language.Indonesian)}.Ticks(10000, 20000)
	var labels []string
	for _, tk := range ticks {
		if tk.Label != "" {
			labels = append(labels, tk.Label)
		}
	}
	require.NotEmpty(t, labels)
	assert.Contains(t, labels, "15.000")
}
