// Package testutil provides testing utilities for the workbench packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/config"
	"github.com/pablasso/workbench/internal/store"
)

// NewState builds a session over kv, a fresh MemoryKV when nil, and closes
// it when the test ends. The session starts from the seed document unless kv
// already holds one.
func NewState(t *testing.T, kv store.KV) *app.State {
	t.Helper()
	if kv == nil {
		kv = store.NewMemoryKV()
	}
	state := app.New(kv, nil)
	t.Cleanup(func() {
		if err := state.Close(); err != nil {
			t.Logf("warning: failed to close state: %v", err)
		}
	})
	return state
}

// WriteConfig writes cfg as a YAML config file in a temp directory and
// returns its path.
func WriteConfig(t *testing.T, cfg config.Config) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
