package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantauharga/internal/model"
	"pantauharga/internal/view"
)

func TestParseFilter(t *testing.T) {
	t.Parallel()

	defaults := view.Filter{
		Commodities: []string{"Beras"},
		Tiers:       []string{"Eceran"},
		Provinces:   []string{"Aceh"},
	}

	f, err := ParseFilter(url.Values{}, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, f)

	// 只给出一个维度时，其余维度为空选择
	f, err = ParseFilter(url.Values{"komoditi": {"Gula", " "}}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gula"}, f.Commodities)
	assert.Empty(t, f.Tiers)
	assert.Empty(t, f.Provinces)

	f, err = ParseFilter(url.Values{"applied": {"1"}, "start": {"2026-1-5"}}, defaults)
	require.NoError(t, err)
	assert.Empty(t, f.Commodities)
	require.NotNil(t, f.Start)
	assert.Equal(t, "2026-01-05", f.Start.String())
	assert.Nil(t, f.End)

	_, err = ParseFilter(url.Values{"end": {"31/31/2026"}}, defaults)
	require.Error(t, err)
	assert.Equal(t, 400, StatusCode(err))
}

func TestFilterQuery_RoundTrip(t *testing.T) {
	t.Parallel()

	start := model.NewDate(2026, time.January, 1)
	f := view.Filter{
		Commodities: []string{"Beras", "Gula"},
		Tiers:       []string{},
		Provinces:   []string{"DKI Jakarta"},
		Start:       &start,
	}

	got, err := ParseFilter(FilterQuery(f), view.Filter{Tiers: []string{"Eceran"}})
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestExportDownloadStore_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s := newExportDownloadStore()
	s.now = func() time.Time { return now }

	token := s.put("/tmp/a.xlsx", "a.xlsx", exportDownloadTTL)
	assert.Len(t, token, 36)

	now = now.Add(exportDownloadTTL + time.Second)
	_, ok := s.take(token)
	assert.False(t, ok)

	token = s.put("/tmp/b.xlsx", "b.xlsx", exportDownloadTTL)
	item, ok := s.take(token)
	require.True(t, ok)
	assert.Equal(t, "b.xlsx", item.fileName)
	_, ok = s.take(token)
	assert.False(t, ok)
}
