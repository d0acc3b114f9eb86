package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
stability:
  base_score: 5.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Stability.BaseScore)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.4, cfg.Instability.AlertThreshold)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
stability:
  base_scroe: 5.0
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidWeights(t *testing.T) {
	path := writeConfig(t, `
instability:
  weights:
    gini_coefficient: 0.9
    border_pressure: 0.5
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
