package store

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_AppendRead(t *testing.T) {
	t.Parallel()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "pantauharga.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rows, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, rows)

	first := sampleObservation()
	second := sampleObservation()
	second.Commodity = "Gula"
	second.Price = decimal.RequireFromString("12500.25")

	require.NoError(t, s.Append(first))
	require.NoError(t, s.Append(second))

	rows, err = s.Read()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beras", rows[0].Commodity)
	assert.Equal(t, "Gula", rows[1].Commodity)
	assert.Equal(t, "12500.25", rows[1].Price.String())
	assert.Equal(t, first.Date, rows[1].Date)
}

func TestOpen_SQLiteSeedsFromCSVOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data_input.csv")
	dbPath := filepath.Join(dir, "pantauharga.db")

	require.NoError(t, NewCSVStore(csvPath).Append(sampleObservation()))

	s, err := Open(BackendSQLite, csvPath, dbPath)
	require.NoError(t, err)
	rows, err := s.Read()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, s.Close())

	// 再次打开不会重复导入
	s, err = Open(BackendSQLite, csvPath, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	rows, err = s.Read()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestOpen_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := Open("parquet", "a.csv", "a.db")
	require.Error(t, err)
}

func TestOpen_DefaultsToCSV(t *testing.T) {
	t.Parallel()

	s, err := Open("", filepath.Join(t.TempDir(), "x.csv"), "")
	require.NoError(t, err)
	_, ok := s.(*CSVStore)
	assert.True(t, ok)
}
