package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "workbench.log")

	logger, closer, err := Open(path, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("save failed", "key", "workbench:doc")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `msg="save failed"`)
	assert.Contains(t, string(data), "key=workbench:doc")
}

func TestOpen_BadLevel(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "x.log"), "chatty")
	assert.Error(t, err)
}
