package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corewindow/internal/config"
)

func TestWriteConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, config.DefaultConfig()))
	assert.Contains(t, buf.String(), `"feature_levels"`)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteConfig_ReportsWriteError(t *testing.T) {
	err := writeConfig(brokenWriter{}, config.DefaultConfig())
	assert.EqualError(t, err, "write config: closed")
}
