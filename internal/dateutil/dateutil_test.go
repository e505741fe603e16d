package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	// 2024-03-05 02:30 UTC is 09:30 WIB
	ts := time.Date(2024, 3, 5, 2, 30, 0, 0, time.UTC)

	assert.Equal(t, "05/03/2024", FormatDate(ts, Short))
	assert.Equal(t, "5 Maret 2024", FormatDate(ts, Long))
	assert.Equal(t, "05/03/2024, 09.30", FormatDate(ts, DateTime))
	assert.Equal(t, "09.30", FormatDate(ts, Time))
	assert.Equal(t, "05/03/2024", FormatDate(ts, Style("other")))
}

func TestFormatDateTimeCrossesMidnight(t *testing.T) {
	ts := time.Date(2024, 12, 31, 17, 5, 0, 0, time.UTC)
	assert.Equal(t, "01/01/2025, 00.05", FormatDate(ts, DateTime))
}

func TestFormatDateCrossesMidnight(t *testing.T) {
	ts := time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 Januari 2025", FormatDate(ts, Long))
	assert.Equal(t, "2025-01-01", DateKey(ts))
}

func TestCalculateAge(t *testing.T) {
	birth, err := ParseDate("1990-06-15")
	require.NoError(t, err)

	before, _ := ParseDate("2024-06-14")
	on, _ := ParseDate("2024-06-15")

	assert.Equal(t, 33, CalculateAge(birth, before))
	assert.Equal(t, 34, CalculateAge(birth, on))
}

func TestCurrentDateTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-01-02T10:04:05+07:00", CurrentDateTime(ts))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-10T08:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", DateKey(got))
	assert.Equal(t, 8, got.In(Location()).Hour())

	got, err = ParseDate("2024-01-10T01:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, got.In(Location()).Hour())

	_, err = ParseDate("10/01/2024")
	assert.Error(t, err)
}

func TestInRange(t *testing.T) {
	ts, _ := ParseDate("2024-01-10T23:00:00")

	assert.True(t, InRange(ts, "2024-01-10", "2024-01-10"))
	assert.True(t, InRange(ts, "", ""))
	assert.False(t, InRange(ts, "2024-01-11", ""))
	assert.False(t, InRange(ts, "", "2024-01-09"))
}
