package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	t.Parallel()

	want := NewDate(2026, time.March, 1)
	for _, in := range []string{
		"2026-03-01",
		"2026-3-1",
		"2026-03-01 00:00:00",
		"2026-03-01T08:30:00Z",
		" 2026-03-01 ",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseDate("kemarin")
	require.Error(t, err)
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	t.Parallel()

	d := DateOf(time.Date(2026, time.January, 15, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-15", d.String())
	assert.Equal(t, NewDate(2026, time.January, 15), d)
}

func TestDate_Ordering(t *testing.T) {
	t.Parallel()

	a := MustParseDate("2026-01-31")
	b := a.AddDays(1)
	assert.Equal(t, "2026-02-01", b.String())
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(MustParseDate("2026-02-03"))
	require.NoError(t, err)
	assert.Equal(t, `"2026-02-03"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-2-3"`), &d))
	assert.Equal(t, MustParseDate("2026-02-03"), d)
}

func TestParseDate_SlashIsMonthFirst(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("12/01/2026")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.December, 1), d)

	_, err = ParseDate("13/01/2026")
	require.Error(t, err)
}
