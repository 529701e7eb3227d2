package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalTime(t *testing.T) {
	parsed, err := parseOptionalTime("", false)
	require.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = parseOptionalTime("2025-06-10T14:30:00Z", false)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC), parsed.UTC())

	parsed, err = parseOptionalTime("2025-06-10", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), *parsed)

	parsed, err = parseOptionalTime("2025-06-10", true)
	require.NoError(t, err)
	assert.Equal(t, 23, parsed.Hour())
	assert.Equal(t, 10, parsed.Day())

	_, err = parseOptionalTime("not-a-date", false)
	assert.Error(t, err)
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV("  "))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b"))
	assert.Equal(t, []string{"page_view"}, splitCSV("page_view,"))
}
