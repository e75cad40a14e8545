package importer

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantauharga/internal/testutil"
)

func TestSource_MissingFile(t *testing.T) {
	t.Parallel()

	src := NewSource(SourceOptions{
		Path:        filepath.Join(t.TempDir(), "tidak-ada.xlsx"),
		ChoiceSheet: "choice",
		DailySheets: []string{"jan26"},
	})

	_, err := src.ReferenceSet()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	_, err = src.Historical()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestSource_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	path := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"choice": testutil.ChoiceSheet(),
		"jan26":  testutil.DailySheet(jan, 2, nil),
	})

	src := NewSource(SourceOptions{Path: path, ChoiceSheet: "choice", DailySheets: []string{"jan26"}})

	obs, err := src.Historical()
	require.NoError(t, err)
	require.Len(t, obs, 6)

	report, loadedAt := src.Report()
	require.NotNil(t, report)
	assert.Equal(t, "harga.xlsx", report.Filename)
	assert.False(t, loadedAt.IsZero())

	// 替换文件内容：缓存仍返回旧数据
	replacement := testutil.BuildWorkbook(t, map[string][][]interface{}{
		"choice": {{"komoditi", "tingkatan", "Provinsi"}, {"Bawang", "Eceran", "Bali"}},
		"jan26":  testutil.DailySheet(jan, 1, nil),
	})
	data, err := os.ReadFile(replacement)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	obs, err = src.Historical()
	require.NoError(t, err)
	assert.Len(t, obs, 6)

	src.Invalidate()

	obs, err = src.Historical()
	require.NoError(t, err)
	assert.Len(t, obs, 3)

	ref, err := src.ReferenceSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bawang"}, ref.Commodities)
}

func TestSource_DeletedFileIsReportedEvenWhenCached(t *testing.T) {
	t.Parallel()

	path := testutil.BuildWorkbook(t, map[string][][]interface{}{"choice": testutil.ChoiceSheet()})
	src := NewSource(SourceOptions{Path: path, ChoiceSheet: "choice"})

	_, err := src.ReferenceSet()
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = src.ReferenceSet()
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestSource_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	src := NewSource(SourceOptions{
		Path:        testutil.StandardWorkbook(t),
		ChoiceSheet: "choice",
		DailySheets: []string{"jan26", "feb26"},
	})

	var wg sync.WaitGroup
	counts := make([]int, 8)
	errs := make([]error, 8)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				src.Invalidate()
			}
			obs, err := src.Historical()
			counts[i], errs[i] = len(obs), err
		}(i)
	}
	wg.Wait()

	for i := range counts {
		require.NoError(t, errs[i])
		assert.Equal(t, 9, counts[i])
	}
}
