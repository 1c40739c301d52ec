package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_String(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{ID{Year: 2020, Week: 5}, "2020-W05"},
		{ID{Year: 2020, Week: 23}, "2020-W23"},
		{ID{Year: 2021, Week: 1}, "2021-W01"},
		{ID{Year: 2020, Week: 53}, "2020-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.String())
		})
	}
}

func TestCurrent(t *testing.T) {
	// Sunday 2022-01-02 belongs to 2021-W52
	assert.Equal(t, ID{Year: 2021, Week: 52}, Current(time.Date(2022, 1, 2, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, ID{Year: 2022, Week: 1}, Current(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)))

	// Evaluated in UTC, not the caller's zone
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, ID{Year: 2022, Week: 1}, Current(time.Date(2022, 1, 2, 20, 0, 0, 0, est)))
}

func TestYear_FullYear(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	ids := Year(2020, now)
	require.Len(t, ids, 53)
	assert.Equal(t, ID{Year: 2020, Week: 1}, ids[0])
	assert.Equal(t, ID{Year: 2020, Week: 53}, ids[len(ids)-1])

	for i, id := range ids {
		assert.Equal(t, ID{Year: 2020, Week: i + 1}, id, "weeks must be consecutive and ascending")
	}
}

func TestYear_SkipsNeighbouringISOYears(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	// 2021-01-01 is in 2020-W53
	ids := Year(2021, now)
	require.NotEmpty(t, ids)
	assert.Equal(t, ID{Year: 2021, Week: 1}, ids[0])
	assert.Len(t, ids, 52)

	// 2024-12-30 is in 2025-W01
	ids = Year(2024, now)
	assert.Equal(t, ID{Year: 2024, Week: 52}, ids[len(ids)-1])
	for _, id := range ids {
		assert.Equal(t, 2024, id.Year)
	}
}

func TestYear_StopsAtNow(t *testing.T) {
	now := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)

	// Jan 1, 8, 15, 22, 29
	ids := Year(2020, now)
	require.Len(t, ids, 5)
	assert.Equal(t, "2020-W05", ids[4].String())

	assert.Empty(t, Year(2021, now), "future year yields nothing")
}

func TestRange(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	ids := Range(2020, 2021, now)
	assert.Len(t, ids, 53+52)
	assert.Equal(t, "2020-W01", ids[0].String())
	assert.Equal(t, "2021-W52", ids[len(ids)-1].String())

	assert.Empty(t, Range(2022, 2021, now))
}
