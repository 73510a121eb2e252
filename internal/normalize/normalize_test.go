package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"830", "08:30"},
		{"830.0", "08:30"},
		{"1430", "14:30"},
		{"0", "00:00"},
		{"2359", "23:59"},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseClockRejectsBadValues(t *testing.T) {
	for _, raw := range []string{"", "abc", "830.5", "-830", "2460", "875"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseDateKeepsDateOnly(t *testing.T) {
	got, err := ParseDate("2025-09-02 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2025-09-02 13:45:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("09/02/2025")
	assert.Error(t, err)
}

func TestParseCount(t *testing.T) {
	got, err := ParseCount("25.0")
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	_, err = ParseCount("25.5")
	assert.Error(t, err)
	_, err = ParseCount("-3")
	assert.Error(t, err)
	_, err = ParseCount("many")
	assert.Error(t, err)
}

func TestFlipName(t *testing.T) {
	assert.Equal(t, "Jane Smith", FlipName("Smith, Jane"))
	assert.Equal(t, "Jane Smith", FlipName(" Smith ,  Jane "))
	assert.Equal(t, "Jane Smith", FlipName("Jane Smith"))
	assert.Equal(t, "", FlipName(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 8))
	assert.Equal(t, "abcdefgh", Truncate("abcdefghij", 8))
}
