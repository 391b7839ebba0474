package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataset(t *testing.T) {
	for in, want := range map[string]Dataset{
		"HE":        DatasetHE,
		"HE_plus":   DatasetHEPlus,
		"HE+":       DatasetHEPlus,
		"MBPP":      DatasetMBPP,
		"MBPP_plus": DatasetMBPPPlus,
		"MBPP+":     DatasetMBPPPlus,
	} {
		got, err := ParseDataset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDataset("humaneval")
	assert.Error(t, err)
}

func TestDatasetPromptField(t *testing.T) {
	assert.Equal(t, "text", DatasetMBPP.PromptField())
	assert.Equal(t, "prompt", DatasetMBPPPlus.PromptField())
	assert.Equal(t, "prompt", DatasetHE.PromptField())
}

func TestDatasetHasPlusTier(t *testing.T) {
	assert.False(t, DatasetMBPP.HasPlusTier())
	assert.True(t, DatasetMBPPPlus.HasPlusTier())
	assert.True(t, DatasetHEPlus.HasPlusTier())
}

// pointReadAtEmptyConfig isolates Read from the developer's real config file
// and environment.
func pointReadAtEmptyConfig(t *testing.T) {
	t.Helper()
	t.Setenv("RANKER_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	for _, key := range []string{
		"RANKER_DATASET", "RANKER_TIMEOUT_SEC", "RANKER_TIME_RATIO",
		"RANKER_POOL_SIZE", "RANKER_WORKERS", "RANKER_PYTHON_BIN",
		"RANKER_PROGRESS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestReadDefaults(t *testing.T) {
	pointReadAtEmptyConfig(t)

	cfg, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "HE_plus", cfg.Dataset)
	assert.Equal(t, 30.0, cfg.TimeoutSec)
	assert.Equal(t, 1.0, cfg.TimeRatioThreshold)
	assert.Equal(t, 5, cfg.PoolSize)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "python3", cfg.PythonBin)
	assert.Equal(t, "term", cfg.Progress)
}

func TestReadTomlFile(t *testing.T) {
	pointReadAtEmptyConfig(t)
	path := filepath.Join(t.TempDir(), "ranker.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset = "MBPP_plus"
timeout_sec = 5.0
workers = 2
`), 0644))
	t.Setenv("RANKER_CONFIG", path)

	cfg, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "MBPP_plus", cfg.Dataset)
	assert.Equal(t, 5.0, cfg.TimeoutSec)
	assert.Equal(t, 2, cfg.Workers)
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.PoolSize)
}

func TestReadEnvOverridesFile(t *testing.T) {
	pointReadAtEmptyConfig(t)
	path := filepath.Join(t.TempDir(), "ranker.toml")
	require.NoError(t, os.WriteFile(path, []byte("dataset = \"HE\"\n"), 0644))
	t.Setenv("RANKER_CONFIG", path)
	t.Setenv("RANKER_DATASET", "MBPP")
	t.Setenv("RANKER_WORKERS", "3")

	cfg, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "MBPP", cfg.Dataset)
	assert.Equal(t, 3, cfg.Workers)
}

func TestReadRejectsBadValues(t *testing.T) {
	pointReadAtEmptyConfig(t)

	t.Setenv("RANKER_DATASET", "nope")
	_, err := Read()
	assert.Error(t, err)
	os.Unsetenv("RANKER_DATASET")

	t.Setenv("RANKER_TIMEOUT_SEC", "0.01")
	_, err = Read()
	assert.Error(t, err)
	os.Unsetenv("RANKER_TIMEOUT_SEC")

	t.Setenv("RANKER_TIME_RATIO", "0.5")
	_, err = Read()
	assert.Error(t, err)
}
