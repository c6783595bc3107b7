package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("amount", " 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = parseDecimal("amount", "")
	assert.EqualError(t, err, "-amount is required")

	_, err = parseDecimal("price", "abc")
	assert.Error(t, err)
}

func TestStopRequested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "STOP")
	assert.False(t, stopRequested(path))
	assert.False(t, stopRequested(""))

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.True(t, stopRequested(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "stop file is consumed")
}
